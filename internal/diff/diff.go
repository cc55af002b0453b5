// Package diff provides the exact, LCS-style layer of line matching.
// It uses github.com/pmezard/go-difflib/difflib to align two line sequences
// into equal/replace/delete/insert spans, derives the seed matches and the
// residual deletion/insertion sets from them, and renders classic unified
// patches for downstream tooling.
package diff

import (
	"fmt"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// Tag names the kind of an opcode span.
type Tag string

const (
	Equal   Tag = "equal"
	Replace Tag = "replace"
	Delete  Tag = "delete"
	Insert  Tag = "insert"
)

// Opcode is one aligned span: a[I1:I2] relates to b[J1:J2].
type Opcode struct {
	Tag Tag `json:"tag" yaml:"tag"`
	I1  int `json:"i1" yaml:"i1"`
	I2  int `json:"i2" yaml:"i2"`
	J1  int `json:"j1" yaml:"j1"`
	J2  int `json:"j2" yaml:"j2"`
}

func (o Opcode) String() string {
	return fmt.Sprintf("%s %d %d %d %d", o.Tag, o.I1, o.I2, o.J1, o.J2)
}

func tagOf(b byte) Tag {
	switch b {
	case 'e':
		return Equal
	case 'r':
		return Replace
	case 'd':
		return Delete
	default:
		return Insert
	}
}

// Opcodes aligns a and b and returns the spans in order. The matcher runs
// without the popularity heuristic so frequent lines (braces, blank lines)
// still anchor the alignment.
func Opcodes(a, b []string) []Opcode {
	m := difflib.NewMatcherWithJunk(a, b, false, nil)
	ops := m.GetOpCodes()
	out := make([]Opcode, 0, len(ops))
	for _, op := range ops {
		out = append(out, Opcode{Tag: tagOf(op.Tag), I1: op.I1, I2: op.I2, J1: op.J1, J2: op.J2})
	}
	return out
}

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Seeding is the outcome of exact alignment over normalized lines.
type Seeding struct {
	Opcodes []Opcode
	// Seeds maps old index to new index for every non-blank equal position.
	Seeds map[int]int
	// Deletions and Insertions hold the non-blank indices of non-equal spans,
	// ascending. They are the work list of the fuzzy pass.
	Deletions  []int
	Insertions []int
	// DeletionRanges and InsertionRanges are the raw non-equal spans per side.
	DeletionRanges  []Range
	InsertionRanges []Range
}

// Seed aligns the normalized sequences and splits them into confident seed
// matches and residual work. Empty strings mark blank lines and never seed
// nor enter the residual sets.
func Seed(oldNorm, newNorm []string) Seeding {
	s := Seeding{
		Opcodes: Opcodes(oldNorm, newNorm),
		Seeds:   make(map[int]int),
	}
	for _, op := range s.Opcodes {
		if op.Tag == Equal {
			for k := 0; k < op.I2-op.I1; k++ {
				oi, nj := op.I1+k, op.J1+k
				if oldNorm[oi] == "" || newNorm[nj] == "" {
					continue
				}
				s.Seeds[oi] = nj
			}
			continue
		}
		if op.I2 > op.I1 {
			s.DeletionRanges = append(s.DeletionRanges, Range{Start: op.I1, End: op.I2})
			for i := op.I1; i < op.I2; i++ {
				if oldNorm[i] != "" {
					s.Deletions = append(s.Deletions, i)
				}
			}
		}
		if op.J2 > op.J1 {
			s.InsertionRanges = append(s.InsertionRanges, Range{Start: op.J1, End: op.J2})
			for j := op.J1; j < op.J2; j++ {
				if newNorm[j] != "" {
					s.Insertions = append(s.Insertions, j)
				}
			}
		}
	}
	return s
}
