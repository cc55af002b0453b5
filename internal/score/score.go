// Package score rates how well an old line corresponds to a new line by
// combining content similarity (normalized Levenshtein), context similarity
// (cosine over neighbourhood vectors) and, optionally, structural similarity.
package score

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"linetrack/internal/vector"
)

// NormalizedLevenshtein returns the unit-cost edit distance between a and b
// divided by the longer rune length: 0 for equal strings, 1 when exactly one
// side is empty.
func NormalizedLevenshtein(a, b string) float64 {
	if a == b {
		return 0
	}
	if a == "" || b == "" {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return float64(d) / float64(max(utf8.RuneCountInString(a), utf8.RuneCountInString(b)))
}

// Similarity is 1 - NormalizedLevenshtein.
func Similarity(a, b string) float64 {
	return 1 - NormalizedLevenshtein(a, b)
}

// Weights are relative; Scorer divides by their sum so every score stays
// within [0, 1].
type Weights struct {
	Content   float64
	Context   float64
	Structure float64
}

func (w Weights) sum() float64 { return w.Content + w.Context + w.Structure }

// Features is the per-line input of the scorer.
type Features struct {
	Norm      string
	Structure string
	Context   vector.Vector
}

// Breakdown carries the individual similarity terms of one comparison.
type Breakdown struct {
	Content   float64 `json:"content" yaml:"content"`
	Context   float64 `json:"context" yaml:"context"`
	Structure float64 `json:"structure,omitempty" yaml:"structure,omitempty"`
	Combined  float64 `json:"combined" yaml:"combined"`
}

// Scorer combines the similarity terms with fixed weights.
type Scorer struct {
	W Weights
}

// Combined returns the weighted similarity of a and b.
func (s Scorer) Combined(a, b Features) float64 {
	return s.Explain(a, b).Combined
}

// Explain returns every term together with the combined score.
func (s Scorer) Explain(a, b Features) Breakdown {
	var out Breakdown
	total := s.W.sum()
	if total <= 0 {
		return out
	}
	out.Content = Similarity(a.Norm, b.Norm)
	out.Context = vector.Cosine(a.Context, b.Context)
	acc := s.W.Content*out.Content + s.W.Context*out.Context
	if s.W.Structure > 0 {
		out.Structure = structural(a.Structure, b.Structure)
		acc += s.W.Structure * out.Structure
	}
	out.Combined = acc / total
	return out
}

// structural compares structure strings; two empty shapes are identical.
func structural(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return Similarity(a, b)
}
