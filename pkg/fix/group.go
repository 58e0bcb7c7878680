package fix

// FileEditGroup is the ordered, conflict-free list of edits for one file.
type FileEditGroup struct {
	// Path is the target file.
	Path string

	// Edits are sorted by ascending offset.
	Edits []Replacement
}

// Delta returns the total change in content length caused by the group.
func (g *FileEditGroup) Delta() int {
	delta := 0
	for _, e := range g.Edits {
		delta += e.Delta()
	}
	return delta
}

// Group partitions set by target file.
// Files without replacements are omitted.
func Group(set *ReplacementSet) map[string]*FileEditGroup {
	groups := make(map[string]*FileEditGroup)
	for _, g := range GroupSorted(set) {
		groups[g.Path] = g
	}
	return groups
}

// GroupSorted is like Group but returns the groups ordered by path.
func GroupSorted(set *ReplacementSet) []*FileEditGroup {
	if set == nil {
		return nil
	}

	all := set.All()
	groups := make([]*FileEditGroup, 0)

	var current *FileEditGroup
	for _, r := range all {
		if current == nil || current.Path != r.FilePath {
			current = &FileEditGroup{Path: r.FilePath}
			groups = append(groups, current)
		}
		current.Edits = append(current.Edits, r)
	}
	return groups
}
