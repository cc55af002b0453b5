package vector

import "math"

// IDF holds smoothed inverse document frequencies over a small corpus of
// pseudo-documents (typically the changed regions of both file versions).
type IDF struct {
	docs int
	df   map[string]int
}

// NewIDF builds document frequencies from docs, each a token list.
func NewIDF(docs [][]string) *IDF {
	idf := &IDF{docs: len(docs), df: make(map[string]int)}
	for _, d := range docs {
		seen := make(map[string]struct{}, len(d))
		for _, t := range d {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			idf.df[t]++
		}
	}
	return idf
}

// Weight returns ln((N+1)/(df+1)) + 1 for term t. Unseen terms get the
// maximum weight.
func (x *IDF) Weight(t string) float64 {
	return math.Log(float64(x.docs+1)/float64(x.df[t]+1)) + 1
}

// Apply returns a new vector with every term weight multiplied by its IDF.
func (x *IDF) Apply(v Vector) Vector {
	if len(v) == 0 {
		return nil
	}
	out := make(Vector, len(v))
	for t, w := range v {
		out[t] = w * x.Weight(t)
	}
	return out
}
