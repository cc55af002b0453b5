// Package validate checks matching results and rendered reports against the
// rules every correspondence must obey. Checks aggregate all issues into a
// single error rather than stopping at the first.
package validate

import (
	"fmt"
	"sort"

	"linetrack/internal/engine"
)

// Result verifies the engine invariants on res:
//
//   - Every mapped old line has a non-empty, strictly ascending set of
//     in-range new indices.
//   - No new line is mapped from two old lines.
//   - Blank lines never appear in the mapping or in the unmatched sets.
//   - Every non-blank old line is either mapped or an unmatched deletion,
//     never both.
//   - Every non-blank new line is either mapped or an unmatched addition,
//     never both.
//   - Matches and Mapping describe the same relation.
func Result(res *engine.Result) error {
	var errs errlist
	if res == nil {
		errs.add("result is nil")
		return errs.err()
	}
	nOld, nNew := len(res.OldBlank), len(res.NewBlank)

	owner := make(map[int]int)
	olds := make([]int, 0, len(res.Mapping))
	for i := range res.Mapping {
		olds = append(olds, i)
	}
	sort.Ints(olds)
	for _, i := range olds {
		js := res.Mapping[i]
		prefix := fmt.Sprintf("mapping[%d]", i)
		if i < 0 || i >= nOld {
			errs.add("%s: old index out of range [0,%d)", prefix, nOld)
			continue
		}
		if res.OldBlank[i] {
			errs.add("%s: blank old line is mapped", prefix)
		}
		if len(js) == 0 {
			errs.add("%s: mapped set is empty", prefix)
		}
		for n, j := range js {
			if j < 0 || j >= nNew {
				errs.add("%s: new index %d out of range [0,%d)", prefix, j, nNew)
				continue
			}
			if n > 0 && js[n-1] >= j {
				errs.add("%s: new indices not strictly ascending (%v)", prefix, js)
			}
			if res.NewBlank[j] {
				errs.add("%s: blank new line %d is mapped", prefix, j)
			}
			if prev, dup := owner[j]; dup {
				errs.add("%s: new line %d already mapped from old line %d", prefix, j, prev)
			} else {
				owner[j] = i
			}
		}
	}

	dels := indexSet(&errs, "unmatched_deletions", res.UnmatchedDeletions, nOld)
	for i := 0; i < nOld; i++ {
		_, mapped := res.Mapping[i]
		_, unmatched := dels[i]
		switch {
		case res.OldBlank[i]:
			if unmatched {
				errs.add("unmatched_deletions: blank old line %d listed", i)
			}
		case mapped && unmatched:
			errs.add("old line %d is both mapped and unmatched", i)
		case !mapped && !unmatched:
			errs.add("old line %d is neither mapped nor unmatched", i)
		}
	}

	adds := indexSet(&errs, "unmatched_additions", res.UnmatchedAdditions, nNew)
	for j := 0; j < nNew; j++ {
		_, owned := owner[j]
		_, unmatched := adds[j]
		switch {
		case res.NewBlank[j]:
			if unmatched {
				errs.add("unmatched_additions: blank new line %d listed", j)
			}
		case owned && unmatched:
			errs.add("new line %d is both mapped and unmatched", j)
		case !owned && !unmatched:
			errs.add("new line %d is neither mapped nor unmatched", j)
		}
	}

	if len(res.Matches) != len(res.Mapping) {
		errs.add("matches has %d entries, mapping has %d", len(res.Matches), len(res.Mapping))
	}
	for n, m := range res.Matches {
		got := m.NewIndices()
		want := res.Mapping[m.Old]
		if !equalInts(got, want) {
			errs.add("matches[%d] (old %d): new lines %v differ from mapping %v", n, m.Old, got, want)
		}
	}

	return errs.err()
}

func indexSet(errs *errlist, name string, idx []int, n int) map[int]struct{} {
	set := make(map[int]struct{}, len(idx))
	for k, i := range idx {
		if i < 0 || i >= n {
			errs.add("%s[%d]: index %d out of range [0,%d)", name, k, i, n)
			continue
		}
		if _, dup := set[i]; dup {
			errs.add("%s[%d]: duplicate index %d", name, k, i)
		}
		set[i] = struct{}{}
	}
	if !sort.IntsAreSorted(idx) {
		errs.add("%s should be sorted ascending", name)
	}
	return set
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
