package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"linetrack/internal/config"
	"linetrack/internal/engine"
	"linetrack/internal/logging"
	"linetrack/internal/report"
	"linetrack/internal/source"
	"linetrack/internal/validate"
)

func (a *app) newMapCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "map OLD NEW",
		Short: "Map the lines of OLD to the lines of NEW",
		Long: `Map every line of OLD to its counterpart(s) in NEW.

Output lines read "{old} -> {new}" with 1-based line numbers; an old line
that was split prints all of its new lines. Blank lines are never mapped.`,
		Args: exactArgs(2, "OLD and NEW files"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMap(cmd.Context(), args[0], args[1], out)
		},
	}
	ov := a.flagsFor(cmd)
	ov.engineFlags()
	ov.outputFlags()
	ov.boolVar("explain", false, "show an intra-line diff for every fuzzy or split match", func(c *config.App, v bool) { c.Explain = v })
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	return cmd
}

func (a *app) runMap(ctx context.Context, oldPath, newPath, out string) error {
	oldLines, err := source.ReadLines(oldPath)
	if err != nil {
		return err
	}
	newLines, err := source.ReadLines(newPath)
	if err != nil {
		return err
	}

	eng, err := engine.New(a.cfg.Config, engine.WithLogger(a.log))
	if err != nil {
		return err
	}
	res, err := eng.Match(ctx, oldLines, newLines)
	if err != nil {
		return fmt.Errorf("match %s -> %s: %w", oldPath, newPath, err)
	}
	if a.cfg.Verify {
		if err := validate.Result(res); err != nil {
			return fmt.Errorf("result failed verification: %w", err)
		}
	}
	a.log.Info().
		Str("old", oldPath).
		Str("new", newPath).
		Int("mapped", len(res.Mapping)).
		Int("seeds", res.Stats.Seeds).
		Int("fuzzy", res.Stats.Fuzzy).
		Int("split_lines", res.Stats.SplitLines).
		Int("unmatched_deletions", len(res.UnmatchedDeletions)).
		Int("unmatched_additions", len(res.UnmatchedAdditions)).
		Msg("mapping complete")

	rep := report.FromResult(oldPath, newPath, res)
	if a.cfg.Explain {
		report.Explain(&rep, oldLines, newLines)
	}
	return a.emit(out, func(w io.Writer, color bool) error {
		return a.writeReport(w, rep, color)
	})
}

// writeReport renders rep in the configured format. JSON output is checked
// against the report schema before it is written when verification is on.
func (a *app) writeReport(w io.Writer, rep report.Report, color bool) error {
	opt := report.TextOptions{ShowUnmatched: a.cfg.ShowUnmatched, Color: color}
	if a.cfg.Format != config.FormatJSON || !a.cfg.Verify {
		return report.Write(w, rep, a.cfg.Format, opt)
	}
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, rep); err != nil {
		return err
	}
	if err := validate.ReportJSON(buf.Bytes()); err != nil {
		return fmt.Errorf("report failed verification: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// emit sends the output of fn to stdout, or atomically to path when set.
// Color is only ever automatic on a terminal.
func (a *app) emit(path string, fn func(w io.Writer, color bool) error) error {
	if path == "" {
		return fn(a.stdout, a.useColor(a.stdout))
	}
	if err := report.WriteFileAtomic(path, func(w io.Writer) error {
		return fn(w, a.cfg.Color == config.ColorAlways)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.log.Info().Str("path", path).Msg("report written")
	return nil
}

func (a *app) useColor(w io.Writer) bool {
	switch a.cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return logging.IsTerminal(w)
	}
}
