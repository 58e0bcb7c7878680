package fix

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/btree"
)

// treeDegree is the B-tree branching factor used for per-file indexes.
const treeDegree = 32

// ReplacementSet is a deduplicated, conflict-free collection of replacements
// spanning any number of files. It is safe for concurrent use.
//
// Each file is indexed by its own B-tree ordered by Compare, so adding an
// edit costs O(log n) in the number of edits already recorded for that file.
type ReplacementSet struct {
	mu     sync.Mutex
	files  map[string]*btree.BTreeG[Replacement]
	size   int
	frozen bool
}

// NewReplacementSet creates an empty ReplacementSet.
func NewReplacementSet() *ReplacementSet {
	return &ReplacementSet{
		files: make(map[string]*btree.BTreeG[Replacement]),
	}
}

// NewReplacementSetFrom creates a set holding edits, returning the set along
// with any conflicts encountered while adding them.
func NewReplacementSetFrom(edits ...Replacement) (*ReplacementSet, error) {
	set := NewReplacementSet()
	err := set.addAll(edits)
	return set, err
}

func lessReplacement(a, b Replacement) bool {
	return Compare(a, b) < 0
}

// Add inserts r into the set.
// Adding a replacement identical to one already present is a no-op.
// If r overlaps a different replacement in the same file, a *ConflictError
// is returned and r is not added.
func (s *ReplacementSet) Add(r Replacement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(r)
}

func (s *ReplacementSet) addLocked(r Replacement) error {
	if s.frozen {
		return ErrFrozen
	}
	if err := checkEdit(r); err != nil {
		return err
	}

	tree, ok := s.files[r.FilePath]
	if !ok {
		tree = btree.NewG(treeDegree, lessReplacement)
		s.files[r.FilePath] = tree
	}

	existing, found, dup := findConflict(tree, r)
	if dup {
		return nil
	}
	if found {
		return newConflict(existing, r)
	}

	tree.ReplaceOrInsert(r)
	s.size++
	return nil
}

// findConflict looks for a stored edit that r collides with. Stored edits are
// pairwise disjoint, so only the neighbours around r's position need checking:
// entries sharing r's offset, the nearest entry starting before it, and
// entries starting inside r's range.
func findConflict(tree *btree.BTreeG[Replacement], r Replacement) (Replacement, bool, bool) {
	var (
		conflict Replacement
		found    bool
		dup      bool
	)

	tree.DescendLessOrEqual(r, func(item Replacement) bool {
		if item == r {
			dup = true
			return false
		}
		if Overlaps(item, r) {
			conflict, found = item, true
			return false
		}
		return item.Offset == r.Offset
	})
	if dup || found {
		return conflict, found, dup
	}

	tree.AscendGreaterOrEqual(r, func(item Replacement) bool {
		if item.Offset != r.Offset && item.Offset >= r.End() {
			return false
		}
		if Overlaps(item, r) {
			conflict, found = item, true
			return false
		}
		return true
	})

	return conflict, found, dup
}

// addAll adds edits under one lock acquisition, collecting every conflict
// instead of stopping at the first one.
func (s *ReplacementSet) addAll(edits []Replacement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		conflicts []*ConflictError
		other     []error
	)
	for _, r := range edits {
		err := s.addLocked(r)
		if err == nil {
			continue
		}
		var cerr *ConflictError
		if errors.As(err, &cerr) {
			conflicts = append(conflicts, cerr)
			continue
		}
		if errors.Is(err, ErrFrozen) {
			return err
		}
		other = append(other, err)
	}

	if len(conflicts) > 0 {
		other = append([]error{&MergeError{Conflicts: conflicts}}, other...)
	}
	return errors.Join(other...)
}

// Merge adds every replacement from other. All conflicts are collected and
// returned together as a *MergeError; non-conflicting edits are still added.
func (s *ReplacementSet) Merge(other *ReplacementSet) error {
	if other == nil {
		return nil
	}
	return s.addAll(other.All())
}

// All returns a snapshot of every replacement ordered by Compare.
func (s *ReplacementSet) All() []Replacement {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Replacement, 0, s.size)
	for _, path := range s.filesLocked() {
		s.files[path].Ascend(func(item Replacement) bool {
			out = append(out, item)
			return true
		})
	}
	return out
}

// ForFile returns the replacements targeting path in ascending order.
func (s *ReplacementSet) ForFile(path string) []Replacement {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.files[path]
	if !ok {
		return nil
	}
	out := make([]Replacement, 0, tree.Len())
	tree.Ascend(func(item Replacement) bool {
		out = append(out, item)
		return true
	})
	return out
}

// Len returns the number of replacements in the set.
func (s *ReplacementSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Files returns the sorted paths of files with at least one replacement.
func (s *ReplacementSet) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filesLocked()
}

func (s *ReplacementSet) filesLocked() []string {
	paths := make([]string, 0, len(s.files))
	for path, tree := range s.files {
		if tree.Len() > 0 {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	return paths
}

// Freeze marks the set read-only. Subsequent Add calls return ErrFrozen.
func (s *ReplacementSet) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether Freeze has been called.
func (s *ReplacementSet) Frozen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frozen
}

// Validate re-checks every file for overlapping edits.
// It is the pre-apply validation pass; a set built only through Add always passes.
func (s *ReplacementSet) Validate() error {
	var conflicts []*ConflictError
	for _, path := range s.Files() {
		err := DetectConflicts(s.ForFile(path))
		conflicts = append(conflicts, Conflicts(err)...)
	}
	if len(conflicts) > 0 {
		return &MergeError{Conflicts: conflicts}
	}
	return nil
}
