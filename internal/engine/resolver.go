package engine

import (
	"github.com/rs/zerolog"
)

// Kind tells how a new line was attached to its old line.
type Kind string

const (
	KindSeed  Kind = "seed"
	KindFuzzy Kind = "fuzzy"
	KindSplit Kind = "split"
)

// seedScore is the claim strength of an exact match; no fuzzy score can
// strictly exceed it.
const seedScore = 1.0

type claim struct {
	old   int
	score float64
	kind  Kind
}

// resolver owns the mutable state of one matching run: who owns each new
// line, and the relation old -> new built from those claims. The two are
// kept consistent by routing every change through claim.
type resolver struct {
	owners map[int]claim
	mapped map[int][]int
	// lost records, per old line, the new lines it was displaced from.
	lost  map[int]map[int]struct{}
	queue []int

	reconsider bool
	stats      Stats
	log        zerolog.Logger
}

func newResolver(reconsider bool, log zerolog.Logger) *resolver {
	return &resolver{
		owners:     make(map[int]claim),
		mapped:     make(map[int][]int),
		lost:       make(map[int]map[int]struct{}),
		reconsider: reconsider,
		log:        log,
	}
}

func (r *resolver) seed(i, j int) {
	r.owners[j] = claim{old: i, score: seedScore, kind: KindSeed}
	r.mapped[i] = append(r.mapped[i], j)
	r.stats.Seeds++
}

// canClaim reports whether score would win j: j is free or its owner's
// score is strictly lower. Equal scores keep the earlier claim.
func (r *resolver) canClaim(j int, score float64) bool {
	c, ok := r.owners[j]
	return !ok || score > c.score
}

// claim hands j to i, detaching it from any previous owner. A previous
// owner left with no new lines is queued for reconsideration.
func (r *resolver) claim(i, j int, score float64, kind Kind) {
	if prev, ok := r.owners[j]; ok && prev.old != i {
		r.detach(prev.old, j)
		r.stats.Displaced++
		r.log.Debug().
			Int("new", j).
			Int("from", prev.old).
			Float64("from_score", prev.score).
			Int("to", i).
			Float64("to_score", score).
			Msg("ownership replaced")
	}
	r.owners[j] = claim{old: i, score: score, kind: kind}
	r.mapped[i] = append(r.mapped[i], j)
	switch kind {
	case KindFuzzy:
		r.stats.Fuzzy++
	case KindSplit:
		r.stats.SplitLines++
	}
}

func (r *resolver) detach(i, j int) {
	cur := r.mapped[i]
	kept := cur[:0]
	for _, k := range cur {
		if k != j {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		delete(r.mapped, i)
		if r.reconsider {
			r.queue = append(r.queue, i)
		}
	} else {
		r.mapped[i] = kept
	}
	if r.lost[i] == nil {
		r.lost[i] = make(map[int]struct{})
	}
	r.lost[i][j] = struct{}{}
}

func (r *resolver) hasLost(i, j int) bool {
	_, ok := r.lost[i][j]
	return ok
}

func (r *resolver) matched(i int) bool { return len(r.mapped[i]) > 0 }

// next pops the next old line waiting for reconsideration.
func (r *resolver) next() (int, bool) {
	if len(r.queue) == 0 {
		return 0, false
	}
	i := r.queue[0]
	r.queue = r.queue[1:]
	return i, true
}
