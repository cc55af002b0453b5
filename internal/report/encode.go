package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteJSON writes rep as indented JSON.
func WriteJSON(w io.Writer, rep any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteYAML writes rep as a YAML document.
func WriteYAML(w io.Writer, rep any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Write renders rep in the named format: text, json or yaml.
func Write(w io.Writer, rep Report, format string, opt TextOptions) error {
	switch format {
	case "", "text":
		return WriteText(w, rep, opt)
	case "json":
		return WriteJSON(w, rep)
	case "yaml":
		return WriteYAML(w, rep)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFileAtomic writes the output of fn to path. The data goes to a
// temporary file in the same directory which is renamed over path, so
// readers never observe a partially-written report.
func WriteFileAtomic(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
