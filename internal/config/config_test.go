package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linetrack/internal/engine"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	app, err := Load(Sources{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app != Default() {
		t.Fatalf("got %+v, want defaults", app)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "linetrack.yaml", `
candidates: 7
main_threshold: 0.5
context_model: tfidf
format: json
show_unmatched: false
`)
	app, err := Load(Sources{File: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.Candidates != 7 || app.MainThreshold != 0.5 || app.ContextModel != engine.ContextTFIDF {
		t.Fatalf("engine config not applied: %+v", app.Config)
	}
	if app.Format != FormatJSON || app.ShowUnmatched {
		t.Fatalf("app config not applied: %+v", app)
	}
	if app.Bits != 64 || app.SplitThreshold != 0.35 {
		t.Fatalf("unset keys must keep defaults: %+v", app.Config)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "linetrack.toml", `
context_radius = 2
max_split_span = 1
log_level = "debug"
`)
	app, err := Load(Sources{File: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.ContextRadius != 2 || app.MaxSplitSpan != 1 || app.LogLevel != "debug" {
		t.Fatalf("toml not applied: %+v", app)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	for _, tc := range []struct{ name, body string }{
		{"bad.yaml", "candidatez: 3\n"},
		{"bad.toml", "candidatez = 3\n"},
	} {
		if _, err := Load(Sources{File: writeFile(t, tc.name, tc.body)}); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
	if _, err := Load(Sources{File: writeFile(t, "cfg.ini", "x=1")}); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "linetrack.yaml", "candidates: 7\n")
	t.Setenv("LINETRACK_CANDIDATES", "9")
	t.Setenv("LINETRACK_RECONSIDER", "false")
	t.Setenv("LINETRACK_COLOR", "never")
	app, err := Load(Sources{File: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.Candidates != 9 || app.Reconsider || app.Color != ColorNever {
		t.Fatalf("environment not applied: %+v", app)
	}
}

func TestEnvFile(t *testing.T) {
	const key = "LINETRACK_SPLIT_THRESHOLD"
	t.Cleanup(func() { os.Unsetenv(key) })
	path := writeFile(t, "test.env", key+"=0.25\n")
	app, err := Load(Sources{EnvFile: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.SplitThreshold != 0.25 {
		t.Fatalf("split threshold = %v", app.SplitThreshold)
	}

	if _, err := Load(Sources{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Fatalf("an explicitly requested env file must exist")
	}
}

func TestValidateCollectsEverything(t *testing.T) {
	app := Default()
	app.Bits = 99
	app.Format = "html"
	app.Color = "sometimes"
	app.LogLevel = "chatty"
	err := app.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	var ce *engine.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("engine issues should surface as ConfigError: %v", err)
	}
	for _, want := range []string{"bits", "format", "color", "log_level"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoadDefersValidation(t *testing.T) {
	path := writeFile(t, "linetrack.yaml", "main_threshold: 2\n")
	app, err := Load(Sources{File: path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if app.MainThreshold != 2 {
		t.Fatalf("MainThreshold = %v, want 2", app.MainThreshold)
	}
	if err := app.Validate(); err == nil || !strings.Contains(err.Error(), "main_threshold") {
		t.Fatalf("expected a main_threshold validation error, got %v", err)
	}
	app.MainThreshold = 0.4
	if err := app.Validate(); err != nil {
		t.Fatalf("overridden value should validate: %v", err)
	}
}
