package ziputil

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	cases := map[string]string{
		"a/b.json":         "a/b.json",
		"/abs/x.json":      "abs/x.json",
		`C:\dir\x.json`:    "dir/x.json",
		"../../etc/passwd": "etc/passwd",
		"a/./b/../c":       "a/c",
		"..":               "entry",
		"":                 "entry",
	}
	for in, want := range cases {
		if got := SanitizePath(in); got != want {
			t.Fatalf("SanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureUniqueName(t *testing.T) {
	used := map[string]struct{}{}
	got := []string{
		EnsureUniqueName("r.json", used),
		EnsureUniqueName("r.json", used),
		EnsureUniqueName("r.json", used),
		EnsureUniqueName("dir.v2/file", used),
		EnsureUniqueName("dir.v2/file", used),
	}
	want := []string{"r.json", "r-1.json", "r-2.json", "dir.v2/file", "dir.v2/file-1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func build(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, name := range []string{"a.txt", "./a.txt", "b/c.txt"} {
		if _, err := w.Create(name, func(ew io.Writer) error {
			_, err := io.WriteString(ew, "body of "+name)
			return err
		}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestWriterIsReproducible(t *testing.T) {
	first, second := build(t), build(t)
	if !bytes.Equal(first, second) {
		t.Fatalf("archives differ between runs")
	}
	zr, err := zip.NewReader(bytes.NewReader(first), int64(len(first)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if !f.Modified.Equal(FixedZipTime) {
			t.Fatalf("%s modified %v", f.Name, f.Modified)
		}
	}
	want := []string{"a.txt", "a-1.txt", "b/c.txt"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
}
