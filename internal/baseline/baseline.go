// Package baseline implements the classic best-line mapper: every old line
// goes to the unused new line with the highest character similarity, in a
// single left-to-right pass. It serves as a reference point for the fuzzy
// engine, which also tracks reordered and split lines.
package baseline

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"linetrack/internal/token"
)

// Options tunes Map.
type Options struct {
	// Threshold is the minimum similarity ratio for a match.
	Threshold float64 `json:"threshold" yaml:"threshold"`
	// Monotone forbids matches before the previously matched new line, so
	// the mapping preserves order.
	Monotone bool `json:"monotone" yaml:"monotone"`
}

// DefaultOptions returns a 0.75 threshold with monotone matching.
func DefaultOptions() Options {
	return Options{Threshold: 0.75, Monotone: true}
}

// Result is the 0-based outcome of Map.
type Result struct {
	Mapping            map[int][]int
	Scores             map[int]float64
	UnmatchedDeletions []int
	UnmatchedAdditions []int
}

// Similarity is the difflib ratio of the normalized characters of a and b.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(chars(token.Normalize(a)), chars(token.Normalize(b))).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Map assigns each non-blank old line to at most one non-blank new line.
// Candidates are scanned in order and only a strictly better ratio replaces
// the current best, so ties go to the earliest new line.
func Map(ctx context.Context, oldLines, newLines []string, opt Options) (*Result, error) {
	if opt.Threshold < 0 || opt.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1] (got %g)", opt.Threshold)
	}
	oldNorm := normalizeAll(oldLines)
	newNorm := normalizeAll(newLines)
	oldChars := make([][]string, len(oldNorm))
	for i, s := range oldNorm {
		oldChars[i] = chars(s)
	}
	newChars := make([][]string, len(newNorm))
	for j, s := range newNorm {
		newChars[j] = chars(s)
	}

	res := &Result{
		Mapping:            make(map[int][]int),
		Scores:             make(map[int]float64),
		UnmatchedDeletions: []int{},
		UnmatchedAdditions: []int{},
	}
	used := make(map[int]bool)
	start := 0
	for i, a := range oldNorm {
		if a == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from := 0
		if opt.Monotone {
			from = start
		}
		best, bestScore := -1, 0.0
		for j := from; j < len(newNorm); j++ {
			if used[j] || newNorm[j] == "" {
				continue
			}
			if s := difflib.NewMatcher(oldChars[i], newChars[j]).Ratio(); s > bestScore {
				best, bestScore = j, s
			}
		}
		if best < 0 || bestScore < opt.Threshold {
			res.UnmatchedDeletions = append(res.UnmatchedDeletions, i)
			continue
		}
		res.Mapping[i] = []int{best}
		res.Scores[i] = bestScore
		used[best] = true
		if opt.Monotone {
			start = best + 1
		}
	}
	for j, b := range newNorm {
		if b != "" && !used[j] {
			res.UnmatchedAdditions = append(res.UnmatchedAdditions, j)
		}
	}
	return res, nil
}

func normalizeAll(lines []string) []string {
	out := make([]string, len(lines))
	for i, s := range lines {
		out[i] = token.Normalize(s)
	}
	return out
}
