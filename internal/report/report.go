// Package report turns a matching result into its user-facing form: text,
// JSON or YAML, with 1-based line numbers.
package report

import (
	"sort"

	"linetrack/internal/engine"
)

// Claim is one target line of a mapping.
type Claim struct {
	Line  int     `json:"line" yaml:"line"`
	Kind  string  `json:"kind" yaml:"kind"`
	Score float64 `json:"score" yaml:"score"`
}

// Mapping is one old line and the new lines it corresponds to.
type Mapping struct {
	Old    int     `json:"old" yaml:"old"`
	New    []int   `json:"new" yaml:"new"`
	Kind   string  `json:"kind" yaml:"kind"`
	Claims []Claim `json:"claims,omitempty" yaml:"claims,omitempty"`
	// Diff is the intra-line explanation, filled by Explain.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Report is the serializable outcome of one file pair.
type Report struct {
	OldFile            string        `json:"old_file" yaml:"old_file"`
	NewFile            string        `json:"new_file" yaml:"new_file"`
	Mappings           []Mapping     `json:"mappings" yaml:"mappings"`
	UnmatchedDeletions []int         `json:"unmatched_deletions" yaml:"unmatched_deletions"`
	UnmatchedAdditions []int         `json:"unmatched_additions" yaml:"unmatched_additions"`
	Stats              *engine.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// FromResult converts an engine result. Indices become 1-based.
func FromResult(oldFile, newFile string, res *engine.Result) Report {
	rep := Report{
		OldFile:            oldFile,
		NewFile:            newFile,
		Mappings:           make([]Mapping, 0, len(res.Matches)),
		UnmatchedDeletions: oneBased(res.UnmatchedDeletions),
		UnmatchedAdditions: oneBased(res.UnmatchedAdditions),
	}
	stats := res.Stats
	rep.Stats = &stats
	for _, m := range res.Matches {
		out := Mapping{
			Old:    m.Old + 1,
			New:    oneBased(m.NewIndices()),
			Kind:   string(m.Kind),
			Claims: make([]Claim, len(m.Claims)),
		}
		for n, c := range m.Claims {
			out.Claims[n] = Claim{Line: c.New + 1, Kind: string(c.Kind), Score: c.Score}
		}
		rep.Mappings = append(rep.Mappings, out)
	}
	return rep
}

// FromMapping builds a report from a bare 0-based relation, as produced by
// mappers that carry no per-claim detail.
func FromMapping(oldFile, newFile string, mapping map[int][]int, unmatchedOld, unmatchedNew []int) Report {
	rep := Report{
		OldFile:            oldFile,
		NewFile:            newFile,
		Mappings:           make([]Mapping, 0, len(mapping)),
		UnmatchedDeletions: oneBased(unmatchedOld),
		UnmatchedAdditions: oneBased(unmatchedNew),
	}
	olds := make([]int, 0, len(mapping))
	for i, js := range mapping {
		if len(js) > 0 {
			olds = append(olds, i)
		}
	}
	sort.Ints(olds)
	for _, i := range olds {
		js := append([]int(nil), mapping[i]...)
		sort.Ints(js)
		kind := string(engine.KindFuzzy)
		if len(js) > 1 {
			kind = string(engine.KindSplit)
		}
		rep.Mappings = append(rep.Mappings, Mapping{Old: i + 1, New: oneBased(js), Kind: kind})
	}
	return rep
}

func oneBased(idx []int) []int {
	out := make([]int, len(idx))
	for n, i := range idx {
		out[n] = i + 1
	}
	return out
}
