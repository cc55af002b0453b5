// Package ziputil writes reproducible zip archives. Every entry carries the
// same timestamp and mode, so equal inputs yield byte-identical archives.
package ziputil

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// FixedZipTime ensures byte-for-byte reproducible archives (1980-01-01 UTC).
var FixedZipTime = time.Unix(315532800, 0).UTC()

// Writer adds sanitized, uniquely named entries to a zip stream.
type Writer struct {
	zw   *zip.Writer
	used map[string]struct{}
}

// NewWriter starts an archive on w. Close must be called to finish it.
func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), used: make(map[string]struct{})}
}

// Create adds an entry named after name and lets fn stream its body. The
// name actually used is returned; it differs from name when sanitizing
// collapsed it onto an earlier entry.
func (w *Writer) Create(name string, fn func(io.Writer) error) (string, error) {
	name = EnsureUniqueName(SanitizePath(name), w.used)
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	h.SetMode(0o644)
	h.Modified = FixedZipTime
	ew, err := w.zw.CreateHeader(h)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if err := fn(ew); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return name, nil
}

// Close writes the central directory.
func (w *Writer) Close() error { return w.zw.Close() }

// SanitizePath normalizes entry paths (forward slashes, no drive, no leading '/'),
// and removes '.' and '..' segments without escaping the root.
func SanitizePath(p string) string {
	s := strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
	if len(s) > 1 && s[1] == ':' {
		s = s[2:]
	}
	parts := strings.Split(s, "/")
	stack := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		default:
			stack = append(stack, part)
		}
	}
	if len(stack) == 0 {
		return "entry"
	}
	return strings.Join(stack, "/")
}

// EnsureUniqueName returns name, or name with -1, -2, ... inserted before
// the extension when it is already in used, and records the result.
func EnsureUniqueName(name string, used map[string]struct{}) string {
	if _, ok := used[name]; !ok {
		used[name] = struct{}{}
		return name
	}
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > strings.LastIndex(name, "/")+1 {
		base, ext = name[:i], name[i:]
	}
	for n := 1; ; n++ {
		alt := fmt.Sprintf("%s-%d%s", base, n, ext)
		if _, ok := used[alt]; !ok {
			used[alt] = struct{}{}
			return alt
		}
	}
}
