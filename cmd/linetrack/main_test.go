package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"linetrack/internal/report"
	"linetrack/internal/validate"
)

const (
	splitOld = "func main() {\nprint(a, b, c)\n}\n"
	splitNew = "func main() {\nprint(a,\n    b, c)\n}\n"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func splitFiles(t *testing.T) (string, string) {
	dir := t.TempDir()
	return writeFile(t, dir, "old.go", splitOld), writeFile(t, dir, "new.go", splitNew)
}

func TestMapText(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	code, out, errOut := runCLI(t, "map", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	want := "1 -> 1\n2 -> 2,3\n3 -> 4\n" +
		"\n# Unmatched deletions (only in OLD file):\n(none)\n" +
		"\n# Unmatched additions (only in NEW file):\n(none)\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
	if !strings.Contains(errOut, "mapping complete") {
		t.Fatalf("expected an info log line, got %q", errOut)
	}
}

func TestMapSplitDisabledByFlag(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	code, out, errOut := runCLI(t, "map", "--max-split", "1", "--log-level", "error", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "2 -> 2\n") || !strings.Contains(out, "NEW 3\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if errOut != "" {
		t.Fatalf("error level should silence info logs, got %q", errOut)
	}
}

func TestMapJSONToFile(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	outPath := filepath.Join(t.TempDir(), "mapping.json")
	code, out, errOut := runCLI(t, "map", "--format", "json", "--explain", "-o", outPath, oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "" {
		t.Fatalf("stdout should be empty, got %q", out)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if err := validate.ReportJSON(raw); err != nil {
		t.Fatalf("ReportJSON: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rep.Mappings[1].Kind != "split" || rep.Mappings[1].Diff == "" {
		t.Fatalf("split mapping = %+v", rep.Mappings[1])
	}
}

func TestMapConfigFileAndEnv(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	cfgPath := writeFile(t, t.TempDir(), "linetrack.yaml", "max_split_span: 1\nformat: yaml\n")

	code, out, errOut := runCLI(t, "--config", cfgPath, "--log-level", "warn", "map", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "old_file:") || !strings.Contains(out, "- 3\n") {
		t.Fatalf("expected a YAML report with line 3 unmatched, got:\n%s", out)
	}

	t.Setenv("LINETRACK_FORMAT", "text")
	code, out, errOut = runCLI(t, "--config", cfgPath, "map", "--max-split", "4", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.HasPrefix(out, "1 -> 1\n2 -> 2,3\n") {
		t.Fatalf("env and flag should override the file, got:\n%s", out)
	}
}

func TestOpcodes(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	code, out, errOut := runCLI(t, "opcodes", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	want := "equal 0 1 0 1\nreplace 1 2 1 3\nequal 2 3 3 4\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestDiff(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	code, out, errOut := runCLI(t, "diff", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"--- " + oldPath, "+++ " + newPath, "-print(a, b, c)\n", "+print(a,\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestBest(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeFile(t, dir, "old.txt", "alpha beta\ngamma delta\n")
	newPath := writeFile(t, dir, "new.txt", "gamma delta\nalpha beta\n")

	code, out, errOut := runCLI(t, "best", oldPath, newPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"1 -> 2\n", "OLD 2\n", "NEW 1\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	code, out, _ = runCLI(t, "best", "--no-monotone", "--format", "json", oldPath, newPath)
	if code != 0 || !strings.Contains(out, `"unmatched_deletions": []`) {
		t.Fatalf("exit %d, output:\n%s", code, out)
	}
}

func TestTree(t *testing.T) {
	oldRoot, newRoot := t.TempDir(), t.TempDir()
	writeFile(t, oldRoot, "same.go", "package same\n")
	writeFile(t, newRoot, "same.go", "package same\n")
	writeFile(t, oldRoot, "pkg/main.go", splitOld)
	writeFile(t, newRoot, "pkg/main.go", splitNew)
	writeFile(t, oldRoot, "gone.go", "package gone\n")
	writeFile(t, newRoot, "fresh.go", "package fresh\n")
	writeFile(t, newRoot, "notes.md", "# notes\n")

	code, out, errOut := runCLI(t, "tree", "--ext", "go", "--format", "json", oldRoot, newRoot)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	var tree report.Tree
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(tree.Files) != 1 || tree.Files[0].OldFile != "pkg/main.go" {
		t.Fatalf("files = %+v", tree.Files)
	}
	if strings.Join(tree.Unchanged, ",") != "same.go" ||
		strings.Join(tree.Added, ",") != "fresh.go" ||
		strings.Join(tree.Removed, ",") != "gone.go" {
		t.Fatalf("tree = %+v", tree)
	}

	code, out, errOut = runCLI(t, "tree", "--ext", "go", oldRoot, newRoot)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"--- pkg/main.go\n", "2 -> 2,3\n", "# Added files (only in NEW tree):\nfresh.go\n", "1 changed, 1 unchanged\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTreeRenamesAndArchive(t *testing.T) {
	oldRoot, newRoot := t.TempDir(), t.TempDir()
	writeFile(t, oldRoot, "main.go", splitOld)
	writeFile(t, newRoot, "cmd/main.go", splitNew)
	archive := filepath.Join(t.TempDir(), "tree.zip")

	code, out, errOut := runCLI(t, "tree", "--renames", "--archive", archive, "--log-level", "error", oldRoot, newRoot)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	for _, want := range []string{"--- main.go\n+++ cmd/main.go\n", "2 -> 2,3\n", "# Renamed files:\nmain.go -> cmd/main.go\n", "1 changed, 0 unchanged\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "summary.txt,tree.json,reports/cmd/main.go.json" {
		t.Fatalf("archive entries = %v", names)
	}

	code, _, errOut = runCLI(t, "tree", "--renames", "--rename-distance", "65", oldRoot, newRoot)
	if code != 2 {
		t.Fatalf("exit %d, want 2: %s", code, errOut)
	}
	// Rejected before either tree is walked, with or without --renames.
	missing := filepath.Join(t.TempDir(), "missing")
	code, _, errOut = runCLI(t, "tree", "--rename-distance", "-1", missing, missing)
	if code != 2 || !strings.Contains(errOut, "--rename-distance") {
		t.Fatalf("exit %d, want 2: %s", code, errOut)
	}
}

func TestConfigErrorsAreUsageErrors(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	broken := writeFile(t, t.TempDir(), "broken.yaml", "no_such_key: 1\n")
	if code, _, errOut := runCLI(t, "--config", broken, "map", oldPath, newPath); code != 2 {
		t.Fatalf("broken config: exit %d, want 2 (%s)", code, errOut)
	}

	t.Setenv("LINETRACK_MAIN_THRESHOLD", "2")
	code, _, errOut := runCLI(t, "map", oldPath, newPath)
	if code != 2 || !strings.Contains(errOut, "main_threshold") {
		t.Fatalf("bad env value: exit %d, want 2 (%s)", code, errOut)
	}

	code, out, errOut := runCLI(t, "map", "--threshold", "0.4", "--log-level", "error", oldPath, newPath)
	if code != 0 {
		t.Fatalf("flag should override the bad env value: exit %d (%s)", code, errOut)
	}
	if !strings.HasPrefix(out, "1 -> 1\n2 -> 2,3\n") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestExitCodes(t *testing.T) {
	oldPath, newPath := splitFiles(t)
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"missing args", []string{"map", oldPath}, 2},
		{"unknown flag", []string{"map", "--nope", oldPath, newPath}, 2},
		{"bad threshold", []string{"map", "--threshold", "2", oldPath, newPath}, 2},
		{"bad format", []string{"map", "--format", "xml", oldPath, newPath}, 2},
		{"missing file", []string{"map", oldPath, filepath.Join(t.TempDir(), "missing.go")}, 1},
		{"missing tree", []string{"tree", filepath.Join(t.TempDir(), "a"), filepath.Join(t.TempDir(), "b")}, 1},
	}
	for _, tc := range cases {
		code, _, errOut := runCLI(t, tc.args...)
		if code != tc.code {
			t.Fatalf("%s: exit %d, want %d (%s)", tc.name, code, tc.code, errOut)
		}
		if !strings.Contains(errOut, "ERROR:") {
			t.Fatalf("%s: stderr lacks ERROR prefix: %q", tc.name, errOut)
		}
	}
}
