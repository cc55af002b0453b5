package report

import (
	"io"

	"linetrack/internal/ziputil"
)

// WriteTreeArchive packs t into a reproducible zip on w: summary.txt holds
// the plain text tree report, tree.json the full tree, and reports/ one JSON
// report per changed file, named after its new path.
func WriteTreeArchive(w io.Writer, t Tree) error {
	zw := ziputil.NewWriter(w)
	if _, err := zw.Create("summary.txt", func(ew io.Writer) error {
		return WriteTree(ew, t, "text", TextOptions{ShowUnmatched: true})
	}); err != nil {
		return err
	}
	if _, err := zw.Create("tree.json", func(ew io.Writer) error {
		return WriteJSON(ew, t)
	}); err != nil {
		return err
	}
	for _, rep := range t.Files {
		if _, err := zw.Create("reports/"+rep.NewFile+".json", func(ew io.Writer) error {
			return WriteJSON(ew, rep)
		}); err != nil {
			return err
		}
	}
	return zw.Close()
}
