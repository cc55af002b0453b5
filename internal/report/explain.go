package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Explain attaches an intra-line diff to every non-exact mapping of rep.
// The old line is compared with its target lines joined by a space, the
// same way split spans are scored. Lines are the raw 0-based inputs.
func Explain(rep *Report, oldLines, newLines []string) {
	dmp := diffmatchpatch.New()
	for n := range rep.Mappings {
		m := &rep.Mappings[n]
		if m.Kind == "seed" || m.Old < 1 || m.Old > len(oldLines) {
			continue
		}
		parts := make([]string, 0, len(m.New))
		for _, j := range m.New {
			if j >= 1 && j <= len(newLines) {
				parts = append(parts, strings.TrimSpace(newLines[j-1]))
			}
		}
		m.Diff = InlineDiff(dmp, strings.TrimSpace(oldLines[m.Old-1]), strings.Join(parts, " "))
	}
}

// InlineDiff renders the character diff of a and b with deletions as
// [-text-] and insertions as {+text+}.
func InlineDiff(dmp *diffmatchpatch.DiffMatchPatch, a, b string) string {
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			sb.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+" + d.Text + "+}")
		}
	}
	return sb.String()
}
