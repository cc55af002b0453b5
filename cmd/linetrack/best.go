package main

import (
	"io"

	"github.com/spf13/cobra"

	"linetrack/internal/baseline"
	"linetrack/internal/report"
)

func (a *app) newBestCmd() *cobra.Command {
	opt := baseline.DefaultOptions()
	var noMonotone bool
	var out string
	cmd := &cobra.Command{
		Use:   "best OLD NEW",
		Short: "Map lines with the single-pass best-line baseline",
		Long: `Map each old line, in order, to the unused new line with the highest
character similarity, if it reaches --threshold. By default matches must
move forward through NEW; --no-monotone lifts that restriction. This is
the reference mapping the fuzzy matcher of "linetrack map" improves on.`,
		Args: exactArgs(2, "OLD and NEW files"),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldLines, newLines, err := readPair(args[0], args[1])
			if err != nil {
				return err
			}
			opt.Monotone = !noMonotone
			res, err := baseline.Map(cmd.Context(), oldLines, newLines, opt)
			if err != nil {
				return &usageError{err: err}
			}
			a.log.Info().
				Int("mapped", len(res.Mapping)).
				Int("unmatched_deletions", len(res.UnmatchedDeletions)).
				Int("unmatched_additions", len(res.UnmatchedAdditions)).
				Msg("baseline mapping complete")

			rep := report.FromMapping(args[0], args[1], res.Mapping, res.UnmatchedDeletions, res.UnmatchedAdditions)
			for n := range rep.Mappings {
				m := &rep.Mappings[n]
				score := res.Scores[m.Old-1]
				m.Claims = []report.Claim{{Line: m.New[0], Kind: m.Kind, Score: score}}
			}
			return a.emit(out, func(w io.Writer, color bool) error {
				return a.writeReport(w, rep, color)
			})
		},
	}
	ov := a.flagsFor(cmd)
	ov.outputFlags()
	cmd.Flags().Float64Var(&opt.Threshold, "threshold", opt.Threshold, "minimum similarity ratio for a match")
	cmd.Flags().BoolVar(&noMonotone, "no-monotone", false, "allow matches that move backwards in NEW")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file instead of stdout")
	return cmd
}
