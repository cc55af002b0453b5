package walkwalk

import (
	"sort"

	"linetrack/internal/simhash"
	"linetrack/internal/source"
	"linetrack/internal/token"
)

// DefaultRenameDistance is the largest whole-file fingerprint distance
// accepted as a rename.
const DefaultRenameDistance = 8

// RenameOptions controls DetectRenames.
type RenameOptions struct {
	// Similarity enables the fingerprint pass after exact renames.
	Similarity bool
	// MaxDistance bounds the Hamming distance of a similarity rename.
	MaxDistance int
}

// Renamed reports whether the pair was joined across differing paths.
func (p Pair) Renamed() bool { return p.Old.RelPath != p.New.RelPath }

type renameCandidate struct {
	removed, added int
	dist           int
}

// DetectRenames moves removed/added file pairs that look like renames into
// p.Renamed. Identical contents pair first; then, when enabled, files of
// comparable size whose token fingerprints lie within MaxDistance pair
// greedily, closest first.
func DetectRenames(p *Pairing, opt RenameOptions) error {
	if len(p.Removed) == 0 || len(p.Added) == 0 {
		return nil
	}
	usedRemoved := make(map[int]bool)
	usedAdded := make(map[int]bool)

	byHash := make(map[string][]int)
	for j, f := range p.Added {
		byHash[f.SHA256Hex] = append(byHash[f.SHA256Hex], j)
	}
	for i, f := range p.Removed {
		idx := byHash[f.SHA256Hex]
		if len(idx) == 0 {
			continue
		}
		j := idx[0]
		byHash[f.SHA256Hex] = idx[1:]
		usedRemoved[i], usedAdded[j] = true, true
		p.Renamed = append(p.Renamed, Pair{RelPath: p.Added[j].RelPath, Old: f, New: p.Added[j]})
	}

	if opt.Similarity {
		cands, err := similarRenames(p, usedRemoved, usedAdded, opt.MaxDistance)
		if err != nil {
			return err
		}
		for _, c := range cands {
			if usedRemoved[c.removed] || usedAdded[c.added] {
				continue
			}
			usedRemoved[c.removed], usedAdded[c.added] = true, true
			p.Renamed = append(p.Renamed, Pair{RelPath: p.Added[c.added].RelPath, Old: p.Removed[c.removed], New: p.Added[c.added]})
		}
	}

	p.Removed = dropUsed(p.Removed, usedRemoved)
	p.Added = dropUsed(p.Added, usedAdded)
	sort.Slice(p.Renamed, func(i, j int) bool { return p.Renamed[i].RelPath < p.Renamed[j].RelPath })
	return nil
}

func similarRenames(p *Pairing, usedRemoved, usedAdded map[int]bool, maxDist int) ([]renameCandidate, error) {
	removedFP := make(map[int]uint64)
	addedFP := make(map[int]uint64)
	var out []renameCandidate
	for i, rf := range p.Removed {
		if usedRemoved[i] {
			continue
		}
		for j, af := range p.Added {
			if usedAdded[j] || !comparableSize(rf.Size, af.Size) {
				continue
			}
			ha, err := cachedFingerprint(rf, i, removedFP)
			if err != nil {
				return nil, err
			}
			hb, err := cachedFingerprint(af, j, addedFP)
			if err != nil {
				return nil, err
			}
			if d := simhash.Hamming(ha, hb); d <= maxDist {
				out = append(out, renameCandidate{removed: i, added: j, dist: d})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].dist != out[b].dist {
			return out[a].dist < out[b].dist
		}
		if ta, tb := p.Added[out[a].added].RelPath, p.Added[out[b].added].RelPath; ta != tb {
			return ta < tb
		}
		return p.Removed[out[a].removed].RelPath < p.Removed[out[b].removed].RelPath
	})
	return out, nil
}

// comparableSize rejects pairs where one file is more than twice the other.
// Empty files never pair by similarity; two empty files pair exactly.
func comparableSize(a, b int64) bool {
	if a < b {
		a, b = b, a
	}
	return b > 0 && a <= 2*b
}

func cachedFingerprint(f FileInfo, idx int, cache map[int]uint64) (uint64, error) {
	if h, ok := cache[idx]; ok {
		return h, nil
	}
	h, err := FileFingerprint(f.AbsPath)
	if err != nil {
		return 0, err
	}
	cache[idx] = h
	return h, nil
}

// FileFingerprint is the 64-bit SimHash of every normalized token in the
// file at path. Line order does not affect it.
func FileFingerprint(path string) (uint64, error) {
	lines, err := source.ReadLines(path)
	if err != nil {
		return 0, err
	}
	var toks []string
	for _, l := range lines {
		toks = append(toks, token.Tokenize(token.Normalize(l))...)
	}
	return simhash.Fingerprint(toks, simhash.MaxBits), nil
}

func dropUsed(files []FileInfo, used map[int]bool) []FileInfo {
	if len(used) == 0 {
		return files
	}
	out := make([]FileInfo, 0, len(files))
	for i, f := range files {
		if !used[i] {
			out = append(out, f)
		}
	}
	return out
}
