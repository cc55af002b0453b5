package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TextOptions controls the plain text rendering.
type TextOptions struct {
	// ShowUnmatched appends the unmatched deletion and addition sections.
	ShowUnmatched bool
	// Color enables ANSI styling regardless of the destination.
	Color bool
	// Header prints the file pair above the mappings.
	Header bool
}

type styles struct {
	header, seed, fuzzy, split, old, new, none lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		header: r.NewStyle().Bold(true),
		seed:   r.NewStyle(),
		fuzzy:  r.NewStyle().Foreground(lipgloss.Color("3")),
		split:  r.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		old:    r.NewStyle().Foreground(lipgloss.Color("1")),
		new:    r.NewStyle().Foreground(lipgloss.Color("2")),
		none:   r.NewStyle().Faint(true),
	}
}

func (s styles) kind(k string) lipgloss.Style {
	switch k {
	case "fuzzy":
		return s.fuzzy
	case "split":
		return s.split
	default:
		return s.seed
	}
}

// WriteText renders rep as "{old} -> {new}" lines, followed by the
// unmatched sections when requested.
func WriteText(w io.Writer, rep Report, opt TextOptions) error {
	bw := bufio.NewWriter(w)
	st := newStyles(w, opt.Color)

	if opt.Header {
		fmt.Fprintln(bw, st.header.Render(fmt.Sprintf("--- %s", rep.OldFile)))
		fmt.Fprintln(bw, st.header.Render(fmt.Sprintf("+++ %s", rep.NewFile)))
	}
	for _, m := range rep.Mappings {
		targets := make([]string, len(m.New))
		for n, j := range m.New {
			targets[n] = strconv.Itoa(j)
		}
		line := fmt.Sprintf("%d -> %s", m.Old, strings.Join(targets, ","))
		fmt.Fprintln(bw, st.kind(m.Kind).Render(line))
		if m.Diff != "" {
			fmt.Fprintf(bw, "    %s\n", m.Diff)
		}
	}

	if opt.ShowUnmatched {
		section(bw, st, "# Unmatched deletions (only in OLD file):", "OLD", rep.UnmatchedDeletions, st.old)
		section(bw, st, "# Unmatched additions (only in NEW file):", "NEW", rep.UnmatchedAdditions, st.new)
	}
	return bw.Flush()
}

func section(w io.Writer, st styles, title, prefix string, idx []int, style lipgloss.Style) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, st.header.Render(title))
	if len(idx) == 0 {
		fmt.Fprintln(w, st.none.Render("(none)"))
		return
	}
	for _, i := range idx {
		fmt.Fprintln(w, style.Render(fmt.Sprintf("%s %d", prefix, i)))
	}
}
