// Package candidate prunes the fuzzy search space: for a deleted line it
// picks the K inserted lines whose fingerprints are nearest in Hamming
// distance. It never decides a match by itself.
package candidate

import (
	"sort"

	"linetrack/internal/simhash"
)

// Signature is the pair of fingerprints kept per line.
type Signature struct {
	Content uint64
	Context uint64
}

// Retriever ranks pool members by fingerprint distance.
type Retriever struct {
	// K caps the number of returned candidates.
	K int
	// ContextWeight blends the context fingerprint into the distance:
	// (1-w)*d(content) + w*d(context). Zero ranks on content alone.
	ContextWeight float64
}

type ranked struct {
	idx  int
	dist float64
}

// Nearest returns up to K indices from pool ordered by ascending distance to
// query, ties broken by ascending index. sig resolves a pool index to its
// signature.
func (r Retriever) Nearest(query Signature, pool []int, sig func(int) Signature) []int {
	if r.K <= 0 || len(pool) == 0 {
		return nil
	}
	w := r.ContextWeight
	items := make([]ranked, 0, len(pool))
	for _, j := range pool {
		s := sig(j)
		d := float64(simhash.Hamming(query.Content, s.Content))
		if w > 0 {
			d = (1-w)*d + w*float64(simhash.Hamming(query.Context, s.Context))
		}
		items = append(items, ranked{idx: j, dist: d})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].dist != items[b].dist {
			return items[a].dist < items[b].dist
		}
		return items[a].idx < items[b].idx
	})
	n := min(r.K, len(items))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = items[i].idx
	}
	return out
}

// Scored is a candidate with its combined similarity.
type Scored struct {
	Index int
	Score float64
}

// Best returns the highest-scoring candidate. Exact ties keep the earlier
// entry, so retrieval order decides. ok is false for an empty list.
func Best(cands []Scored) (best Scored, ok bool) {
	for i, c := range cands {
		if i == 0 || c.Score > best.Score {
			best = c
			ok = true
		}
	}
	return best, ok
}
