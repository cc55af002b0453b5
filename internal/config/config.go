// Package config resolves the linetrack configuration from defaults, an
// optional YAML or TOML file, a .env file and LINETRACK_* environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"linetrack/internal/engine"
	"linetrack/internal/logging"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "linetrack"

// DefaultEnvFile is loaded when present and no other file is requested.
const DefaultEnvFile = ".env"

// Report formats and color modes.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// App is the complete configuration of one CLI invocation.
type App struct {
	engine.Config `yaml:",inline"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT"`

	// Format selects the report writer: text, json or yaml.
	Format        string `json:"format" yaml:"format" toml:"format" envconfig:"FORMAT"`
	Color         string `json:"color" yaml:"color" toml:"color" envconfig:"COLOR"`
	ShowUnmatched bool   `json:"show_unmatched" yaml:"show_unmatched" toml:"show_unmatched" envconfig:"SHOW_UNMATCHED"`
	Explain       bool   `json:"explain" yaml:"explain" toml:"explain" envconfig:"EXPLAIN"`
	// Verify re-checks every result against the mapping invariants before
	// it is written.
	Verify bool `json:"verify" yaml:"verify" toml:"verify" envconfig:"VERIFY"`
}

// Default returns the built-in configuration.
func Default() App {
	return App{
		Config:        engine.DefaultConfig(),
		LogLevel:      "info",
		LogFormat:     logging.FormatAuto,
		Format:        FormatText,
		Color:         ColorAuto,
		ShowUnmatched: true,
		Verify:        true,
	}
}

// Sources names where configuration is read from. Empty fields fall back to
// the defaults: no config file, and DefaultEnvFile if it exists.
type Sources struct {
	File    string
	EnvFile string
}

// Load resolves the configuration. Later sources override earlier ones:
// defaults, config file, .env file, process environment. Variables already
// set in the process environment win over the .env file.
//
// The result is not validated; callers apply their own overrides first and
// then call Validate.
func Load(src Sources) (App, error) {
	app := Default()
	if src.File != "" {
		if err := decodeFile(src.File, &app); err != nil {
			return App{}, err
		}
	}
	if err := loadEnvFile(src.EnvFile); err != nil {
		return App{}, err
	}
	if err := envconfig.Process(EnvPrefix, &app); err != nil {
		return App{}, fmt.Errorf("read environment: %w", err)
	}
	return app, nil
}

func decodeFile(path string, app *App) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(app); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), app)
		if err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Validate checks the engine tuning and the CLI enums, reporting every
// problem at once.
func (a App) Validate() error {
	var errs []error
	if err := a.Config.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(a.LogLevel))); err != nil {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", a.LogLevel))
	}
	switch a.LogFormat {
	case logging.FormatAuto, logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log_format must be auto, json or console (got %q)", a.LogFormat))
	}
	switch a.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("format must be text, json or yaml (got %q)", a.Format))
	}
	switch a.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never (got %q)", a.Color))
	}
	return errors.Join(errs...)
}
