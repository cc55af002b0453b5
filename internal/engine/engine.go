// Package engine computes a correspondence between the lines of an old and a
// new version of a text, beyond what exact LCS diffing finds: reordered,
// reworded and split lines are still tracked to their counterpart.
//
// A run goes through these stages:
//
//	normalize/tokenize -> exact seeding (diff) -> fingerprints + context
//	vectors -> top-K candidate retrieval -> scoring -> greedy assignment with
//	ownership contention -> split detection -> result assembly
//
// Retrieval and scoring run in parallel across deleted lines; assignment is
// strictly sequential, in ascending order of old index, so exact score ties
// resolve in favour of the earlier claim.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"linetrack/internal/candidate"
	"linetrack/internal/diff"
	"linetrack/internal/score"
	"linetrack/internal/token"
	"linetrack/internal/vector"
)

// Engine matches line sequences with a fixed configuration. It holds no
// per-run state and is safe for concurrent use.
type Engine struct {
	cfg       Config
	scorer    score.Scorer
	retriever candidate.Retriever
	log       zerolog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing of a run.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New validates cfg and returns an Engine. Invalid configurations fail with
// a *ConfigError.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg,
		scorer: score.Scorer{W: score.Weights{
			Content:   cfg.ContentWeight,
			Context:   cfg.ContextWeight,
			Structure: cfg.StructureWeight,
		}},
		retriever: candidate.Retriever{K: cfg.Candidates, ContextWeight: cfg.RetrievalContextWeight},
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Match computes the line correspondence between oldLines and newLines.
// Empty inputs are valid: everything on the non-empty side is reported
// unmatched. The context only cancels the parallel scoring phase.
func (e *Engine) Match(ctx context.Context, oldLines, newLines []string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opt := token.Options{TightPunctuation: e.cfg.TightPunctuation}
	oldP := prepare(oldLines, opt)
	newP := prepare(newLines, opt)

	seeding := diff.Seed(oldP.norm, newP.norm)
	r := newResolver(e.cfg.Reconsider, e.log)
	for i, j := range seeding.Seeds {
		r.seed(i, j)
	}
	r.stats.Deletions = len(seeding.Deletions)
	r.stats.Insertions = len(seeding.Insertions)
	e.log.Debug().
		Int("old_lines", len(oldLines)).
		Int("new_lines", len(newLines)).
		Int("seeds", len(seeding.Seeds)).
		Int("deletions", len(seeding.Deletions)).
		Int("insertions", len(seeding.Insertions)).
		Msg("exact seeding done")

	if len(seeding.Deletions) == 0 || len(seeding.Insertions) == 0 {
		return assemble(r, oldP.norm, newP.norm, seeding.Opcodes), nil
	}

	var idf *vector.IDF
	if e.cfg.ContextModel == ContextTFIDF {
		idf = rangeIDF(oldP, newP, seeding)
	}
	oldSnap := buildSnapshot(oldP, e.cfg, idf)
	newSnap := buildSnapshot(newP, e.cfg, idf)

	ranked, err := e.scoreDeletions(ctx, oldSnap, newSnap, seeding.Deletions, seeding.Insertions)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	for n, i := range seeding.Deletions {
		e.resolve(r, i, ranked[n], oldSnap, newSnap, newP.norm)
	}
	pos := make(map[int]int, len(seeding.Deletions))
	for n, i := range seeding.Deletions {
		pos[i] = n
	}
	for {
		i, ok := r.next()
		if !ok {
			break
		}
		if r.matched(i) {
			continue
		}
		r.stats.Reconsidered++
		e.resolve(r, i, ranked[pos[i]], oldSnap, newSnap, newP.norm)
	}

	res := assemble(r, oldP.norm, newP.norm, seeding.Opcodes)
	e.log.Debug().
		Int("matched", len(res.Mapping)).
		Int("unmatched_deletions", len(res.UnmatchedDeletions)).
		Int("unmatched_additions", len(res.UnmatchedAdditions)).
		Int("displaced", res.Stats.Displaced).
		Msg("fuzzy matching done")
	return res, nil
}

// scoreDeletions retrieves and scores candidates for every deleted line.
// It only reads the snapshots, so deletions are processed in parallel;
// result n belongs to dels[n].
func (e *Engine) scoreDeletions(ctx context.Context, old, nw *Snapshot, dels, pool []int) ([][]candidate.Scored, error) {
	out := make([][]candidate.Scored, len(dels))
	sig := func(j int) candidate.Signature { return nw.Lines[j].signature() }

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for n, i := range dels {
		n, i := n, i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src := &old.Lines[i]
			idx := e.retriever.Nearest(src.signature(), pool, sig)
			scored := make([]candidate.Scored, 0, len(idx))
			feats := src.features()
			for _, j := range idx {
				scored = append(scored, candidate.Scored{Index: j, Score: e.scorer.Combined(feats, nw.Lines[j].features())})
			}
			out[n] = scored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// resolve assigns deleted line i to its best candidate, subject to the main
// threshold and ownership contention, then probes for a split.
func (e *Engine) resolve(r *resolver, i int, cands []candidate.Scored, old, nw *Snapshot, norms []string) {
	if r.matched(i) {
		return
	}
	open := cands
	if len(r.lost[i]) > 0 {
		open = make([]candidate.Scored, 0, len(cands))
		for _, c := range cands {
			if !r.hasLost(i, c.Index) {
				open = append(open, c)
			}
		}
	}
	best, ok := candidate.Best(open)
	if !ok || best.Score < e.cfg.MainThreshold {
		return
	}
	if !r.canClaim(best.Index, best.Score) {
		e.log.Debug().Int("old", i).Int("new", best.Index).Float64("score", best.Score).Msg("claim lost to current owner")
		return
	}
	r.claim(i, best.Index, best.Score, KindFuzzy)
	e.log.Debug().Int("old", i).Int("new", best.Index).Float64("score", best.Score).Msg("fuzzy match")
	e.extendSplit(r, i, best.Index, old, nw, norms)
}
