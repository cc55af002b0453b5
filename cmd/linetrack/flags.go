package main

import (
	"github.com/spf13/cobra"

	"linetrack/internal/config"
)

// overrides records the flags of one command that map onto config.App
// fields. Only flags the user actually set are applied, so values from the
// config file and the environment survive untouched otherwise.
type overrides struct {
	cmd *cobra.Command
	set []override
}

type override struct {
	name  string
	apply func(*config.App)
}

func (a *app) flagsFor(cmd *cobra.Command) *overrides {
	ov := &overrides{cmd: cmd}
	a.overrides[cmd] = ov
	return ov
}

func (o *overrides) apply(cfg *config.App) {
	for _, s := range o.set {
		if o.cmd.Flags().Changed(s.name) {
			s.apply(cfg)
		}
	}
}

func (o *overrides) intVar(name string, def int, usage string, set func(*config.App, int)) {
	v := new(int)
	o.cmd.Flags().IntVar(v, name, def, usage)
	o.set = append(o.set, override{name, func(c *config.App) { set(c, *v) }})
}

func (o *overrides) floatVar(name string, def float64, usage string, set func(*config.App, float64)) {
	v := new(float64)
	o.cmd.Flags().Float64Var(v, name, def, usage)
	o.set = append(o.set, override{name, func(c *config.App) { set(c, *v) }})
}

func (o *overrides) boolVar(name string, def bool, usage string, set func(*config.App, bool)) {
	v := new(bool)
	o.cmd.Flags().BoolVar(v, name, def, usage)
	o.set = append(o.set, override{name, func(c *config.App) { set(c, *v) }})
}

func (o *overrides) stringVar(name, def, usage string, set func(*config.App, string)) {
	v := new(string)
	o.cmd.Flags().StringVar(v, name, def, usage)
	o.set = append(o.set, override{name, func(c *config.App) { set(c, *v) }})
}

// engineFlags registers a flag for every matcher setting.
func (o *overrides) engineFlags() {
	d := config.Default()
	o.intVar("bits", d.Bits, "SimHash fingerprint width (1-64)", func(c *config.App, v int) { c.Bits = v })
	o.intVar("candidates", d.Candidates, "candidates scored per deleted line", func(c *config.App, v int) { c.Candidates = v })
	o.intVar("context-radius", d.ContextRadius, "lines of context on each side", func(c *config.App, v int) { c.ContextRadius = v })
	o.floatVar("threshold", d.MainThreshold, "minimum score for a match", func(c *config.App, v float64) { c.MainThreshold = v })
	o.floatVar("split-threshold", d.SplitThreshold, "minimum score for each extra line of a split", func(c *config.App, v float64) { c.SplitThreshold = v })
	o.intVar("max-split", d.MaxSplitSpan, "maximum new lines per old line (1 disables splits)", func(c *config.App, v int) { c.MaxSplitSpan = v })
	o.floatVar("content-weight", d.ContentWeight, "weight of content similarity", func(c *config.App, v float64) { c.ContentWeight = v })
	o.floatVar("context-weight", d.ContextWeight, "weight of context similarity", func(c *config.App, v float64) { c.ContextWeight = v })
	o.floatVar("structure-weight", d.StructureWeight, "weight of token-shape similarity", func(c *config.App, v float64) { c.StructureWeight = v })
	o.floatVar("retrieval-context-weight", d.RetrievalContextWeight, "share of the context fingerprint in candidate ranking", func(c *config.App, v float64) { c.RetrievalContextWeight = v })
	o.stringVar("context-model", d.ContextModel, "context vectors: tf or tfidf", func(c *config.App, v string) { c.ContextModel = v })
	o.boolVar("tight-punctuation", d.TightPunctuation, "ignore spaces around punctuation", func(c *config.App, v bool) { c.TightPunctuation = v })
	o.boolVar("reconsider", d.Reconsider, "retry lines that lost their match to a better claim", func(c *config.App, v bool) { c.Reconsider = v })
	o.intVar("workers", d.Workers, "parallel scoring workers (0 = GOMAXPROCS)", func(c *config.App, v int) { c.Workers = v })
}

// outputFlags registers the report flags shared by the mapping commands.
func (o *overrides) outputFlags() {
	d := config.Default()
	o.stringVar("format", d.Format, "report format: text, json, yaml", func(c *config.App, v string) { c.Format = v })
	o.stringVar("color", d.Color, "colorize text output: auto, always, never", func(c *config.App, v string) { c.Color = v })
	o.boolVar("show-unmatched", d.ShowUnmatched, "list unmatched deletions and additions", func(c *config.App, v bool) { c.ShowUnmatched = v })
	o.boolVar("verify", d.Verify, "check every result against the mapping invariants", func(c *config.App, v bool) { c.Verify = v })
}
