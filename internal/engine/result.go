package engine

import (
	"sort"

	"linetrack/internal/diff"
)

// Claim is one new line attached to an old line.
type Claim struct {
	New   int     `json:"new" yaml:"new"`
	Kind  Kind    `json:"kind" yaml:"kind"`
	Score float64 `json:"score" yaml:"score"`
}

// Match groups the claims of one old line, ordered by new index.
type Match struct {
	Old    int     `json:"old" yaml:"old"`
	Kind   Kind    `json:"kind" yaml:"kind"`
	Claims []Claim `json:"claims" yaml:"claims"`
}

// NewIndices returns the new-line indices of m in ascending order.
func (m Match) NewIndices() []int {
	out := make([]int, len(m.Claims))
	for i, c := range m.Claims {
		out[i] = c.New
	}
	return out
}

// Stats counts what happened during one run. Fuzzy and SplitLines count
// successful claims, including claims later taken over by a better match.
type Stats struct {
	Seeds        int `json:"seeds" yaml:"seeds"`
	Deletions    int `json:"deletions" yaml:"deletions"`
	Insertions   int `json:"insertions" yaml:"insertions"`
	Fuzzy        int `json:"fuzzy" yaml:"fuzzy"`
	SplitLines   int `json:"split_lines" yaml:"split_lines"`
	Displaced    int `json:"displaced" yaml:"displaced"`
	Reconsidered int `json:"reconsidered" yaml:"reconsidered"`
}

// Result is the frozen output of one matching run. All indices are 0-based.
type Result struct {
	// Mapping holds old -> ascending new indices for every matched old line.
	Mapping map[int][]int
	// Matches carries the same relation with kinds and scores, by old index.
	Matches []Match
	// UnmatchedDeletions are non-blank old lines without a counterpart.
	UnmatchedDeletions []int
	// UnmatchedAdditions are non-blank new lines nobody claimed.
	UnmatchedAdditions []int
	// Opcodes is the exact alignment the run was seeded from.
	Opcodes []diff.Opcode

	OldBlank []bool
	NewBlank []bool
	Stats    Stats
}

// assemble freezes the resolver state into a Result.
func assemble(r *resolver, oldNorm, newNorm []string, ops []diff.Opcode) *Result {
	res := &Result{
		Mapping:            make(map[int][]int, len(r.mapped)),
		Matches:            make([]Match, 0, len(r.mapped)),
		UnmatchedDeletions: []int{},
		UnmatchedAdditions: []int{},
		Opcodes:            ops,
		OldBlank:           blanks(oldNorm),
		NewBlank:           blanks(newNorm),
		Stats:              r.stats,
	}
	olds := make([]int, 0, len(r.mapped))
	for i, js := range r.mapped {
		if len(js) > 0 {
			olds = append(olds, i)
		}
	}
	sort.Ints(olds)
	for _, i := range olds {
		js := append([]int(nil), r.mapped[i]...)
		sort.Ints(js)
		res.Mapping[i] = js
		m := Match{Old: i, Kind: KindFuzzy, Claims: make([]Claim, 0, len(js))}
		for _, j := range js {
			c := r.owners[j]
			m.Claims = append(m.Claims, Claim{New: j, Kind: c.kind, Score: c.score})
			switch c.kind {
			case KindSeed:
				m.Kind = KindSeed
			case KindSplit:
				if m.Kind != KindSeed {
					m.Kind = KindSplit
				}
			}
		}
		res.Matches = append(res.Matches, m)
	}
	for i, n := range oldNorm {
		if n != "" && len(res.Mapping[i]) == 0 {
			res.UnmatchedDeletions = append(res.UnmatchedDeletions, i)
		}
	}
	for j, n := range newNorm {
		if _, owned := r.owners[j]; n != "" && !owned {
			res.UnmatchedAdditions = append(res.UnmatchedAdditions, j)
		}
	}
	return res
}

func blanks(norm []string) []bool {
	out := make([]bool, len(norm))
	for i, n := range norm {
		out[i] = n == ""
	}
	return out
}
