package token

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"   \t ":          "",
		"Hello   World":   "hello world",
		"  a\tB  c ":      "a b c",
		"print(a, b, c)":  "print(a, b, c)",
		"MIXED_case  123": "mixed_case 123",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeWithTightPunctuation(t *testing.T) {
	opt := Options{TightPunctuation: true}
	a := NormalizeWith("f( a , b ) = x + 1", opt)
	b := NormalizeWith("f(a,b)=x+1", opt)
	if a != b {
		t.Fatalf("expected equal tight forms, got %q vs %q", a, b)
	}
	if a != "f(a,b)=x+1" {
		t.Fatalf("unexpected tight form %q", a)
	}
	if got := NormalizeWith("return  x", opt); got != "return x" {
		t.Fatalf("tightening must keep word spacing, got %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(Normalize("   ")) {
		t.Fatalf("whitespace-only line should be blank")
	}
	if IsBlank("x") {
		t.Fatalf("non-empty line reported blank")
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"()", nil},
		{"print(a, b, c)", []string{"print", "a", "b", "c"}},
		{"x_1+=y2;", []string{"x_1", "y2"}},
		{"héllo wörld", []string{"héllo", "wörld"}},
	}
	for _, c := range cases {
		if got := Tokenize(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Tokenize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestStructure(t *testing.T) {
	got := Structure(Tokenize("if x1 return 42"))
	want := []string{"if", "ID", "return", "NUM"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Structure = %q, want %q", got, want)
	}
	if Structure(nil) != nil {
		t.Fatalf("Structure(nil) should be nil")
	}
}
