// Package textutil turns raw file bytes into the line sequences the matcher
// works on: BOM-aware decoding, newline normalization and line splitting.
package textutil

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts b to UTF-8. A UTF-8 or UTF-16 (LE/BE) byte order mark
// selects the source encoding and is stripped; without one the input is
// treated as UTF-8. Invalid sequences become U+FFFD.
func Decode(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return b, nil
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeUTF8LF converts CRLF to LF and ensures the output is valid UTF-8
// by replacing invalid byte sequences with the Unicode replacement character.
func NormalizeUTF8LF(b []byte) []byte {
	// Normalize newlines first
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("\uFFFD"))
}

// SplitLines splits LF-normalized text into lines without their terminators.
// A trailing newline does not produce a final empty line; empty input yields
// no lines at all.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Lines is the full intake pipeline: Decode, NormalizeUTF8LF, SplitLines.
func Lines(b []byte) ([]string, error) {
	dec, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return SplitLines(string(NormalizeUTF8LF(dec))), nil
}
