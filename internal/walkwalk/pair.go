package walkwalk

// Pair is one relative path present in both trees.
type Pair struct {
	RelPath string
	Old     FileInfo
	New     FileInfo
}

// Unchanged reports whether both sides have identical contents.
func (p Pair) Unchanged() bool { return p.Old.SHA256Hex == p.New.SHA256Hex }

// Pairing is the file-level correspondence between two trees.
type Pairing struct {
	// Pairs are present on both sides, sorted by path.
	Pairs []Pair
	// Removed exist only in the old tree.
	Removed []FileInfo
	// Added exist only in the new tree.
	Added []FileInfo
	// Renamed are filled in by DetectRenames; RelPath is the new path.
	Renamed []Pair
}

// PairTrees matches two path-sorted listings, as returned by CollectFiles,
// by relative path.
func PairTrees(old, nw []FileInfo) Pairing {
	var p Pairing
	i, j := 0, 0
	for i < len(old) && j < len(nw) {
		switch a, b := old[i].RelPath, nw[j].RelPath; {
		case a == b:
			p.Pairs = append(p.Pairs, Pair{RelPath: a, Old: old[i], New: nw[j]})
			i++
			j++
		case a < b:
			p.Removed = append(p.Removed, old[i])
			i++
		default:
			p.Added = append(p.Added, nw[j])
			j++
		}
	}
	p.Removed = append(p.Removed, old[i:]...)
	p.Added = append(p.Added, nw[j:]...)
	return p
}
