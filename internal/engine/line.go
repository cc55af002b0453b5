package engine

import (
	"strings"

	"linetrack/internal/candidate"
	"linetrack/internal/diff"
	"linetrack/internal/score"
	"linetrack/internal/simhash"
	"linetrack/internal/token"
	"linetrack/internal/vector"
)

// Line is one input line with everything the matcher derives from it.
// Lines are built once and never modified.
type Line struct {
	Index     int
	Raw       string
	Norm      string
	Tokens    []string
	Structure string
	Content   uint64
	Context   uint64
	Vector    vector.Vector
	Blank     bool
}

// Snapshot is the ordered line sequence of one file version.
type Snapshot struct {
	Lines []Line
}

// prepared is the cheap first stage: normalization and tokens only.
type prepared struct {
	raw    []string
	norm   []string
	tokens [][]string
}

func prepare(raw []string, opt token.Options) prepared {
	p := prepared{
		raw:    raw,
		norm:   make([]string, len(raw)),
		tokens: make([][]string, len(raw)),
	}
	for i, s := range raw {
		p.norm[i] = token.NormalizeWith(s, opt)
		p.tokens[i] = token.Tokenize(p.norm[i])
	}
	return p
}

// buildSnapshot computes fingerprints and context vectors for every line.
// idf may be nil for plain term-frequency vectors.
func buildSnapshot(p prepared, cfg Config, idf *vector.IDF) *Snapshot {
	s := &Snapshot{Lines: make([]Line, len(p.raw))}
	for i := range p.raw {
		ctxTokens := vector.Window(p.tokens, i, cfg.ContextRadius)
		vec := vector.TermFrequency(ctxTokens)
		if idf != nil {
			vec = idf.Apply(vec)
		}
		s.Lines[i] = Line{
			Index:     i,
			Raw:       p.raw[i],
			Norm:      p.norm[i],
			Tokens:    p.tokens[i],
			Structure: strings.Join(token.Structure(p.tokens[i]), " "),
			Content:   simhash.Fingerprint(p.tokens[i], cfg.Bits),
			Context:   simhash.Fingerprint(ctxTokens, cfg.Bits),
			Vector:    vec,
			Blank:     token.IsBlank(p.norm[i]),
		}
	}
	return s
}

func (l *Line) signature() candidate.Signature {
	return candidate.Signature{Content: l.Content, Context: l.Context}
}

func (l *Line) features() score.Features {
	return score.Features{Norm: l.Norm, Structure: l.Structure, Context: l.Vector}
}

// rangeIDF treats every changed region of either version as one document.
func rangeIDF(oldP, newP prepared, s diff.Seeding) *vector.IDF {
	docs := make([][]string, 0, len(s.DeletionRanges)+len(s.InsertionRanges))
	collect := func(tokens [][]string, r diff.Range) []string {
		var d []string
		for i := r.Start; i < r.End; i++ {
			d = append(d, tokens[i]...)
		}
		return d
	}
	for _, r := range s.DeletionRanges {
		docs = append(docs, collect(oldP.tokens, r))
	}
	for _, r := range s.InsertionRanges {
		docs = append(docs, collect(newP.tokens, r))
	}
	return vector.NewIDF(docs)
}
