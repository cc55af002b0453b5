// Package walkwalk collects the text files of a directory tree in a stable
// order and pairs two trees by relative path, so that whole revisions can be
// line-matched file by file.
package walkwalk

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// FileInfo describes one collected file.
type FileInfo struct {
	RelPath   string // root-relative path with forward slashes
	AbsPath   string
	Size      int64
	SHA256Hex string // lowercase hex sha256 of the contents
	Ext       string // lowercase, including the dot
}

// Filter selects which files CollectFiles returns. The zero value accepts
// every regular file and skips symlinks.
type Filter struct {
	// Exts restricts collection to these lowercase extensions (".go").
	Exts map[string]struct{}
	// Exclude skips any file or directory whose base name starts with one
	// of these keys.
	Exclude map[string]struct{}
	// Includes admits files outside Exts whose path contains one of these
	// substrings, case-insensitively.
	Includes []string
	// MaxBytes caps the total size collected; 0 is unlimited.
	MaxBytes int64
	// MaxFileBytes skips larger files; 0 is unlimited.
	MaxFileBytes int64
	// Gitignore honours the root .gitignore.
	Gitignore      bool
	FollowSymlinks bool
}

// DefaultExclude lists the version-control and dependency directories that
// are never worth matching.
func DefaultExclude() map[string]struct{} {
	return map[string]struct{}{
		".git":         {},
		".hg":          {},
		".svn":         {},
		"node_modules": {},
		"vendor":       {},
	}
}

type walker struct {
	filter  Filter
	root    string
	ignores []gitPattern
	total   int64
	files   []FileInfo
}

// CollectFiles walks root and returns the files accepted by f, sorted by
// relative path.
func CollectFiles(root string, f Filter) ([]FileInfo, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, &fs.PathError{Op: "collect", Path: root, Err: fs.ErrInvalid}
	}
	w := &walker{filter: f, root: abs}
	if f.Gitignore {
		// A missing or unreadable .gitignore simply means nothing is ignored.
		w.ignores, _ = parseGitignore(filepath.Join(abs, ".gitignore"))
	}
	if err := filepath.WalkDir(abs, w.visit); err != nil {
		return nil, err
	}
	sort.Slice(w.files, func(i, j int) bool { return w.files[i].RelPath < w.files[j].RelPath })
	return w.files, nil
}

func (w *walker) visit(path string, d fs.DirEntry, err error) error {
	if err != nil {
		return nil
	}
	if path == w.root {
		return nil
	}
	if w.filter.MaxBytes > 0 && w.total >= w.filter.MaxBytes {
		return skip(d)
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if w.excluded(rel, d) {
		return skip(d)
	}
	if isSymlink(d) && !w.filter.FollowSymlinks {
		return skip(d)
	}
	if d.IsDir() {
		return nil
	}
	return w.add(path, rel)
}

func skip(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

func (w *walker) excluded(rel string, d fs.DirEntry) bool {
	base := filepath.Base(rel)
	for k := range w.filter.Exclude {
		if strings.HasPrefix(base, k) {
			return true
		}
	}
	return w.filter.Gitignore && matchGitignore(w.ignores, rel, d.IsDir())
}

func (w *walker) add(path, rel string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if w.filter.MaxFileBytes > 0 && info.Size() > w.filter.MaxFileBytes {
		return nil
	}
	if !w.accepts(rel) {
		return nil
	}
	if w.filter.MaxBytes > 0 && w.total+info.Size() > w.filter.MaxBytes {
		return nil
	}
	sum, err := sha256File(path)
	if err != nil {
		return nil
	}
	w.files = append(w.files, FileInfo{
		RelPath:   rel,
		AbsPath:   path,
		Size:      info.Size(),
		SHA256Hex: sum,
		Ext:       strings.ToLower(filepath.Ext(rel)),
	})
	w.total += info.Size()
	return nil
}

func (w *walker) accepts(rel string) bool {
	if len(w.filter.Exts) == 0 {
		return true
	}
	if _, ok := w.filter.Exts[strings.ToLower(filepath.Ext(rel))]; ok {
		return true
	}
	lc := strings.ToLower(rel)
	for _, inc := range w.filter.Includes {
		if inc != "" && strings.Contains(lc, strings.ToLower(inc)) {
			return true
		}
	}
	return false
}

func isSymlink(d fs.DirEntry) bool {
	return d.Type()&fs.ModeSymlink != 0
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ParseExts turns a comma-separated extension list ("go, .py") into a
// Filter.Exts set.
func ParseExts(list string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range strings.Split(list, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out[e] = struct{}{}
	}
	return out
}

// ---------------- .gitignore support ----------------

type gitPattern struct {
	neg     bool
	dirOnly bool
	rx      *regexp.Regexp
}

// parseGitignore compiles the subset of gitignore syntax that matters for
// source trees: comments, '!' negation, leading '/' anchors, trailing '/'
// for directories, '**' across directories, '*' and '?' within one segment.
func parseGitignore(path string) ([]gitPattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []gitPattern
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var p gitPattern
		if strings.HasPrefix(line, "!") {
			p.neg = true
			line = strings.TrimSpace(line[1:])
			if line == "" {
				continue
			}
		}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		anchored := strings.HasPrefix(line, "/")
		line = strings.TrimPrefix(line, "/")
		p.rx = compileGitGlob(line, anchored)
		out = append(out, p)
	}
	return out, s.Err()
}

func compileGitGlob(glob string, anchored bool) *regexp.Regexp {
	esc := regexp.QuoteMeta(glob)
	esc = strings.ReplaceAll(esc, `\*\*`, "\x00")
	esc = strings.ReplaceAll(esc, `\*`, "[^/]*")
	esc = strings.ReplaceAll(esc, `\?`, "[^/]")
	esc = strings.ReplaceAll(esc, "\x00", ".*")
	if anchored {
		return regexp.MustCompile("^" + esc + "$")
	}
	return regexp.MustCompile("(^|.*/)" + esc + "$")
}

// matchGitignore applies patterns in order; the last match wins.
func matchGitignore(pats []gitPattern, rel string, isDir bool) bool {
	ignored := false
	for _, p := range pats {
		if p.dirOnly && !isDir {
			continue
		}
		if p.rx.MatchString(rel) {
			ignored = !p.neg
		}
	}
	return ignored
}
