// Package vector holds the bag-of-words context model: per-line term
// frequency vectors over a neighbourhood window, optional IDF weighting and
// cosine similarity.
package vector

import "math"

// Vector is a sparse term -> weight map.
type Vector map[string]float64

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var s float64
	for _, w := range v {
		s += w * w
	}
	return math.Sqrt(s)
}

// TermFrequency counts tokens. Empty input yields an empty (nil) vector.
func TermFrequency(tokens []string) Vector {
	if len(tokens) == 0 {
		return nil
	}
	v := make(Vector, len(tokens))
	for _, t := range tokens {
		v[t]++
	}
	return v
}

// Window concatenates the token lists of lines [i-radius, i+radius] of the
// same file, excluding line i itself.
func Window(lines [][]string, i, radius int) []string {
	if radius <= 0 || i < 0 || i >= len(lines) {
		return nil
	}
	start := max(0, i-radius)
	end := min(len(lines), i+radius+1)
	var out []string
	for k := start; k < end; k++ {
		if k == i {
			continue
		}
		out = append(out, lines[k]...)
	}
	return out
}

// Cosine returns dot(a,b)/(|a||b|), or 0 when either vector is empty or has
// zero norm.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for t, w := range small {
		if w2, ok := large[t]; ok {
			dot += w * w2
		}
	}
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
