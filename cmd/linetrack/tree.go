package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"linetrack/internal/engine"
	"linetrack/internal/report"
	"linetrack/internal/simhash"
	"linetrack/internal/source"
	"linetrack/internal/validate"
	"linetrack/internal/walkwalk"
)

type treeOptions struct {
	exts           string
	exclude        string
	include        string
	maxFileBytes   int64
	gitignore      bool
	followSymlinks bool
	jobs           int
	out            string
	archive        string
	renames        bool
	renameDistance int
}

func (a *app) newTreeCmd() *cobra.Command {
	var opt treeOptions
	cmd := &cobra.Command{
		Use:   "tree OLD_DIR NEW_DIR",
		Short: "Map every file present in both directory trees",
		Long: `Pair the files of two directory trees by relative path and map the lines of
every pair whose contents differ. Files present on one side only are listed
as added or removed. With --renames, removed and added files with identical
or near-identical token content are paired as renames and mapped too.`,
		Args: exactArgs(2, "OLD_DIR and NEW_DIR"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opt.validate(); err != nil {
				return &usageError{err: err}
			}
			return a.runTree(cmd.Context(), args[0], args[1], opt)
		},
	}
	ov := a.flagsFor(cmd)
	ov.engineFlags()
	ov.outputFlags()
	f := cmd.Flags()
	f.StringVar(&opt.exts, "ext", "", "comma-separated extensions to include (default: all files)")
	f.StringVar(&opt.exclude, "exclude", ".git,.hg,.svn,node_modules,vendor", "comma-separated file/dir name prefixes to skip")
	f.StringVar(&opt.include, "include", "", "comma-separated path substrings to include regardless of --ext")
	f.Int64Var(&opt.maxFileBytes, "max-file-bytes", 2_000_000, "skip files larger than this (0 = no limit)")
	f.BoolVar(&opt.gitignore, "gitignore", true, "honor the root .gitignore of each tree")
	f.BoolVar(&opt.followSymlinks, "follow-symlinks", false, "follow symlinked files")
	f.IntVar(&opt.jobs, "jobs", 0, "files matched concurrently (0 = GOMAXPROCS)")
	f.StringVarP(&opt.out, "out", "o", "", "write the report to this file instead of stdout")
	f.StringVar(&opt.archive, "archive", "", "also write a zip with the summary, tree.json and one JSON report per file")
	f.BoolVar(&opt.renames, "renames", false, "pair removed and added files that look like renames")
	f.IntVar(&opt.renameDistance, "rename-distance", walkwalk.DefaultRenameDistance, "largest fingerprint distance (0-64) accepted as a rename")
	return cmd
}

func (opt treeOptions) validate() error {
	if opt.renameDistance < 0 || opt.renameDistance > simhash.MaxBits {
		return fmt.Errorf("--rename-distance must be within [0, %d], got %d", simhash.MaxBits, opt.renameDistance)
	}
	if opt.maxFileBytes < 0 {
		return fmt.Errorf("--max-file-bytes must not be negative, got %d", opt.maxFileBytes)
	}
	if opt.jobs < 0 {
		return fmt.Errorf("--jobs must not be negative, got %d", opt.jobs)
	}
	return nil
}

func (opt treeOptions) filter() walkwalk.Filter {
	var exts map[string]struct{}
	if strings.TrimSpace(opt.exts) != "" {
		exts = walkwalk.ParseExts(opt.exts)
	}
	exclude := make(map[string]struct{})
	for _, e := range strings.Split(opt.exclude, ",") {
		if e = strings.TrimSpace(e); e != "" {
			exclude[e] = struct{}{}
		}
	}
	var includes []string
	for _, s := range strings.Split(opt.include, ",") {
		if s = strings.TrimSpace(s); s != "" {
			includes = append(includes, s)
		}
	}
	return walkwalk.Filter{
		Exts:           exts,
		Exclude:        exclude,
		Includes:       includes,
		MaxFileBytes:   opt.maxFileBytes,
		Gitignore:      opt.gitignore,
		FollowSymlinks: opt.followSymlinks,
	}
}

func (a *app) runTree(ctx context.Context, oldRoot, newRoot string, opt treeOptions) error {
	filter := opt.filter()
	oldFiles, err := walkwalk.CollectFiles(oldRoot, filter)
	if err != nil {
		return &source.InputError{Path: oldRoot, Err: err}
	}
	newFiles, err := walkwalk.CollectFiles(newRoot, filter)
	if err != nil {
		return &source.InputError{Path: newRoot, Err: err}
	}
	pairing := walkwalk.PairTrees(oldFiles, newFiles)
	if opt.renames {
		if err := walkwalk.DetectRenames(&pairing, walkwalk.RenameOptions{Similarity: true, MaxDistance: opt.renameDistance}); err != nil {
			return err
		}
	}

	eng, err := engine.New(a.cfg.Config, engine.WithLogger(a.log))
	if err != nil {
		return err
	}

	tree := report.Tree{
		OldRoot:   oldRoot,
		NewRoot:   newRoot,
		Files:     []report.Report{},
		Unchanged: []string{},
		Added:     relPaths(pairing.Added),
		Removed:   relPaths(pairing.Removed),
	}
	var changed []walkwalk.Pair
	for _, p := range pairing.Pairs {
		if p.Unchanged() {
			tree.Unchanged = append(tree.Unchanged, p.RelPath)
		} else {
			changed = append(changed, p)
		}
	}
	for _, p := range pairing.Renamed {
		tree.Renamed = append(tree.Renamed, report.Rename{From: p.Old.RelPath, To: p.New.RelPath})
		changed = append(changed, p)
	}

	reports := make([]report.Report, len(changed))
	g, gctx := errgroup.WithContext(ctx)
	jobs := opt.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(jobs)
	for n, p := range changed {
		n, p := n, p
		g.Go(func() error {
			rep, err := a.matchPair(gctx, eng, p)
			if err != nil {
				return err
			}
			reports[n] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	tree.Files = append(tree.Files, reports...)

	a.log.Info().
		Int("changed", len(changed)).
		Int("unchanged", len(tree.Unchanged)).
		Int("added", len(tree.Added)).
		Int("removed", len(tree.Removed)).
		Int("renamed", len(tree.Renamed)).
		Msg("tree mapping complete")

	if opt.archive != "" {
		if err := report.WriteFileAtomic(opt.archive, func(w io.Writer) error {
			return report.WriteTreeArchive(w, tree)
		}); err != nil {
			return fmt.Errorf("write %s: %w", opt.archive, err)
		}
		a.log.Info().Str("path", opt.archive).Msg("archive written")
	}
	return a.emit(opt.out, func(w io.Writer, color bool) error {
		return report.WriteTree(w, tree, a.cfg.Format, report.TextOptions{ShowUnmatched: a.cfg.ShowUnmatched, Color: color})
	})
}

func (a *app) matchPair(ctx context.Context, eng *engine.Engine, p walkwalk.Pair) (report.Report, error) {
	oldLines, err := source.ReadLines(p.Old.AbsPath)
	if err != nil {
		return report.Report{}, err
	}
	newLines, err := source.ReadLines(p.New.AbsPath)
	if err != nil {
		return report.Report{}, err
	}
	res, err := eng.Match(ctx, oldLines, newLines)
	if err != nil {
		return report.Report{}, fmt.Errorf("match %s: %w", p.RelPath, err)
	}
	if a.cfg.Verify {
		if err := validate.Result(res); err != nil {
			return report.Report{}, fmt.Errorf("%s: result failed verification: %w", p.RelPath, err)
		}
	}
	a.log.Debug().
		Str("path", p.RelPath).
		Int("mapped", len(res.Mapping)).
		Int("unmatched_deletions", len(res.UnmatchedDeletions)).
		Int("unmatched_additions", len(res.UnmatchedAdditions)).
		Msg("file mapped")
	rep := report.FromResult(p.Old.RelPath, p.New.RelPath, res)
	if a.cfg.Explain {
		report.Explain(&rep, oldLines, newLines)
	}
	return rep, nil
}

func relPaths(files []walkwalk.FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}
