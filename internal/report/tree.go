package report

import (
	"bufio"
	"fmt"
	"io"
)

// Tree is the outcome of matching two directory trees file by file.
type Tree struct {
	OldRoot   string   `json:"old_root" yaml:"old_root"`
	NewRoot   string   `json:"new_root" yaml:"new_root"`
	Files     []Report `json:"files" yaml:"files"`
	Unchanged []string `json:"unchanged" yaml:"unchanged"`
	Added     []string `json:"added" yaml:"added"`
	Removed   []string `json:"removed" yaml:"removed"`
	Renamed   []Rename `json:"renamed,omitempty" yaml:"renamed,omitempty"`
}

// Rename is a file that moved between the trees.
type Rename struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// WriteTree renders t in the named format. Text output prints every changed
// file with a header, then the file-level summary.
func WriteTree(w io.Writer, t Tree, format string, opt TextOptions) error {
	switch format {
	case "json":
		return WriteJSON(w, t)
	case "yaml":
		return WriteYAML(w, t)
	case "", "text":
	default:
		return fmt.Errorf("unknown report format %q", format)
	}

	bw := bufio.NewWriter(w)
	opt.Header = true
	for n, rep := range t.Files {
		if n > 0 {
			fmt.Fprintln(bw)
		}
		if err := WriteText(bw, rep, opt); err != nil {
			return err
		}
	}
	for _, s := range []struct {
		title string
		paths []string
	}{
		{"# Removed files (only in OLD tree):", t.Removed},
		{"# Added files (only in NEW tree):", t.Added},
	} {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, s.title)
		if len(s.paths) == 0 {
			fmt.Fprintln(bw, "(none)")
		}
		for _, p := range s.paths {
			fmt.Fprintln(bw, p)
		}
	}
	if len(t.Renamed) > 0 {
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "# Renamed files:")
		for _, r := range t.Renamed {
			fmt.Fprintf(bw, "%s -> %s\n", r.From, r.To)
		}
	}
	fmt.Fprintf(bw, "\n%d changed, %d unchanged\n", len(t.Files), len(t.Unchanged))
	return bw.Flush()
}
