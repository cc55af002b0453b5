package engine

import (
	"strings"

	"linetrack/internal/score"
)

// probeSplit grows a span of new lines starting at first while the old line
// keeps getting closer (strictly smaller normalized Levenshtein distance) to
// the space-joined span. It returns the span, first included, never longer
// than maxSpan. Blank or out-of-range lines end the probe.
func probeSplit(base string, norms []string, first, maxSpan int) []int {
	span := []int{first}
	if maxSpan <= 1 {
		return span
	}
	best := score.NormalizedLevenshtein(base, norms[first])
	if best == 0 {
		return span
	}
	var joined strings.Builder
	joined.WriteString(norms[first])
	for step := 1; step < maxSpan; step++ {
		k := first + step
		if k >= len(norms) || norms[k] == "" {
			break
		}
		joined.WriteByte(' ')
		joined.WriteString(norms[k])
		d := score.NormalizedLevenshtein(base, joined.String())
		if d >= best {
			break
		}
		best = d
		span = append(span, k)
	}
	return span
}

// extendSplit attaches the lines after first that the probe proposes, one
// by one. Each must clear the split threshold on its own score and win
// ownership; the first one that fails ends the span.
func (e *Engine) extendSplit(r *resolver, i, first int, old, nw *Snapshot, norms []string) {
	span := probeSplit(old.Lines[i].Norm, norms, first, e.cfg.MaxSplitSpan)
	if len(span) < 2 {
		return
	}
	src := old.Lines[i].features()
	for _, k := range span[1:] {
		sc := e.scorer.Combined(src, nw.Lines[k].features())
		if sc < e.cfg.SplitThreshold {
			e.log.Debug().Int("old", i).Int("new", k).Float64("score", sc).Msg("split extension below threshold")
			return
		}
		if !r.canClaim(k, sc) {
			e.log.Debug().Int("old", i).Int("new", k).Float64("score", sc).Msg("split extension lost contention")
			return
		}
		r.claim(i, k, sc, KindSplit)
	}
	e.log.Debug().Int("old", i).Ints("span", r.mapped[i]).Msg("split detected")
}
