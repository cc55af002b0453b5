package token

// keywords survive structural abstraction verbatim. The set covers the
// control-flow and declaration words shared by the C family, Go, Java,
// Python and JavaScript.
var keywords = map[string]struct{}{
	"if": {}, "else": {}, "elif": {}, "for": {}, "while": {}, "do": {},
	"switch": {}, "case": {}, "default": {}, "break": {}, "continue": {},
	"return": {}, "goto": {}, "try": {}, "catch": {}, "finally": {},
	"except": {}, "raise": {}, "throw": {}, "throws": {}, "with": {},
	"func": {}, "function": {}, "def": {}, "class": {}, "struct": {},
	"interface": {}, "enum": {}, "type": {}, "var": {}, "let": {},
	"const": {}, "static": {}, "final": {}, "public": {}, "private": {},
	"protected": {}, "import": {}, "package": {}, "from": {}, "as": {},
	"new": {}, "delete": {}, "this": {}, "self": {}, "super": {},
	"null": {}, "nil": {}, "none": {}, "true": {}, "false": {},
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "void": {},
	"int": {}, "float": {}, "double": {}, "char": {}, "bool": {},
	"string": {}, "lambda": {}, "yield": {}, "async": {}, "await": {},
	"go": {}, "defer": {}, "select": {}, "range": {}, "map": {}, "chan": {},
}

// Structure abstracts tokens into a shape sequence: keywords are kept,
// all-digit tokens become NUM and everything else becomes ID.
func Structure(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	for i, t := range tokens {
		switch {
		case isKeyword(t):
			out[i] = t
		case allDigits(t):
			out[i] = "NUM"
		default:
			out[i] = "ID"
		}
	}
	return out
}

func isKeyword(t string) bool {
	_, ok := keywords[t]
	return ok
}

func allDigits(t string) bool {
	if t == "" {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] < '0' || t[i] > '9' {
			return false
		}
	}
	return true
}
