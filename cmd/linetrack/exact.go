package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"linetrack/internal/diff"
	"linetrack/internal/source"
	"linetrack/internal/token"
)

func (a *app) newOpcodesCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "opcodes OLD NEW",
		Short: "Print the exact line alignment of OLD and NEW",
		Long: `Print the LCS alignment that fuzzy matching is seeded from, one opcode per
line as "tag i1 i2 j1 j2" with 0-based half-open ranges. Tags are equal,
replace, delete and insert. Lines are compared after whitespace and case
normalization unless --raw is given.`,
		Args: exactArgs(2, "OLD and NEW files"),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldLines, newLines, err := readPair(args[0], args[1])
			if err != nil {
				return err
			}
			if !raw {
				oldLines = normalizeAll(oldLines, a.cfg.TightPunctuation)
				newLines = normalizeAll(newLines, a.cfg.TightPunctuation)
			}
			return writeOpcodes(a.stdout, diff.Opcodes(oldLines, newLines))
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "compare lines byte for byte")
	return cmd
}

func writeOpcodes(w io.Writer, ops []diff.Opcode) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		fmt.Fprintln(bw, op.String())
	}
	return bw.Flush()
}

func (a *app) newDiffCmd() *cobra.Command {
	var opt diff.Options
	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Print a unified diff of OLD and NEW",
		Args:  exactArgs(2, "OLD and NEW files"),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldLines, newLines, err := readPair(args[0], args[1])
			if err != nil {
				return err
			}
			body, oversize := diff.Unified(args[0], args[1], oldLines, newLines, opt)
			if oversize {
				a.log.Warn().Int("max_bytes", opt.MaxBytes).Msg("inputs exceed the diff size limit")
			}
			_, err = io.WriteString(a.stdout, body)
			return err
		},
	}
	cmd.Flags().IntVarP(&opt.Context, "context", "U", 3, "lines of context around each change")
	cmd.Flags().IntVar(&opt.MaxBytes, "max-bytes", 0, "skip diffing inputs larger than this (0 = no limit)")
	return cmd
}

func readPair(oldPath, newPath string) ([]string, []string, error) {
	oldLines, err := source.ReadLines(oldPath)
	if err != nil {
		return nil, nil, err
	}
	newLines, err := source.ReadLines(newPath)
	if err != nil {
		return nil, nil, err
	}
	return oldLines, newLines, nil
}

func normalizeAll(lines []string, tight bool) []string {
	opt := token.Options{TightPunctuation: tight}
	out := make([]string, len(lines))
	for i, s := range lines {
		out[i] = token.NormalizeWith(s, opt)
	}
	return out
}
