// Package token canonicalizes raw lines and splits them into word tokens.
//
// Every function here is pure; empty input yields an empty result.
package token

import (
	"strings"
	"unicode"
)

// Options tunes normalization.
type Options struct {
	// TightPunctuation drops spaces around = + - * / [ ] ( ) , so that
	// "f(a, b)" and "f( a,b )" normalize identically.
	TightPunctuation bool
}

// Normalize trims s, lowercases it and collapses internal whitespace runs
// to a single space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NormalizeWith is Normalize followed by the optional rewrites in opt.
func NormalizeWith(s string, opt Options) string {
	n := Normalize(s)
	if opt.TightPunctuation {
		n = tighten(n)
	}
	return n
}

// IsBlank reports whether a normalized line is empty. Blank lines never take
// part in matching.
func IsBlank(norm string) bool { return norm == "" }

func isTight(r rune) bool {
	switch r {
	case '=', '+', '-', '*', '/', '[', ']', '(', ')', ',':
		return true
	}
	return false
}

// tighten removes the single spaces Normalize leaves next to punctuation.
func tighten(s string) string {
	if !strings.ContainsAny(s, "=+-*/[](),") {
		return s
	}
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range rs {
		if r == ' ' {
			prevTight := i > 0 && isTight(rs[i-1])
			nextTight := i+1 < len(rs) && isTight(rs[i+1])
			if prevTight || nextTight {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize returns the maximal runs of letters, digits and underscores in s.
// Any other rune ends the current token and is discarded.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := -1
	for i, r := range s {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
