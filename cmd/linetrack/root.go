package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"linetrack/internal/config"
	"linetrack/internal/logging"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	stdout, stderr io.Writer

	configFile string
	envFile    string
	logLevel   string
	logFormat  string

	cfg config.App
	log zerolog.Logger

	overrides map[*cobra.Command]*overrides
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		stdout:    stdout,
		stderr:    stderr,
		log:       zerolog.Nop(),
		overrides: make(map[*cobra.Command]*overrides),
	}
	defaults := config.Default()

	root := &cobra.Command{
		Use:   "linetrack",
		Short: "Track lines between two versions of a text file",
		Long: `linetrack computes which lines of a new file version correspond to which
lines of the old version. Beyond the exact matches a diff finds, it tracks
lines that were reordered, edited or split across several lines.

Examples:
  linetrack map old.go new.go
  linetrack map --format json --out mapping.json old.go new.go
  linetrack tree --ext go,py ./v1 ./v2`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (.yaml, .yml or .toml)")
	pf.StringVar(&a.envFile, "env-file", "", "env file to load (default .env when present)")
	pf.StringVar(&a.logLevel, "log-level", defaults.LogLevel, "log level: trace, debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", defaults.LogFormat, "log format: auto, json, console")

	root.AddCommand(
		a.newMapCmd(),
		a.newOpcodesCmd(),
		a.newDiffCmd(),
		a.newBestCmd(),
		a.newTreeCmd(),
	)
	return root
}

// setup resolves the configuration and the logger before any subcommand
// runs. Explicit command-line flags override every other source.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Sources{File: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return &usageError{err: err}
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if ov := a.overrides[cmd]; ov != nil {
		ov.apply(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: fmt.Errorf("invalid options: %w", err)}
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, a.stderr)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log.With().Str("command", cmd.Name()).Logger()
	return nil
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int, names string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &usageError{err: fmt.Errorf("expected %s, got %d argument(s)", names, len(args))}
		}
		return nil
	}
}
