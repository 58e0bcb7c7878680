// Package fix provides replacement types, conflict detection, and edit
// application for cross-file refactorings.
package fix

import (
	"cmp"
	"fmt"
	"strings"
)

// Replacement represents a single text replacement in a file.
// It is a value type; copies are independent.
type Replacement struct {
	// FilePath identifies the target file.
	FilePath string

	// Offset is the byte index into the original content where the edit begins.
	Offset int

	// Length is the number of original bytes replaced. Zero means insertion.
	Length int

	// Text is the replacement text. Empty means deletion.
	Text string
}

// NewReplacement creates a Replacement of [offset, offset+length) in path.
func NewReplacement(path string, offset, length int, text string) Replacement {
	return Replacement{
		FilePath: path,
		Offset:   offset,
		Length:   length,
		Text:     text,
	}
}

// End returns the exclusive end offset of the replaced range.
func (r Replacement) End() int {
	return r.Offset + r.Length
}

// IsInsert reports whether r replaces nothing.
func (r Replacement) IsInsert() bool {
	return r.Length == 0
}

// IsDelete reports whether r removes bytes without adding any.
func (r Replacement) IsDelete() bool {
	return r.Length > 0 && r.Text == ""
}

// Delta returns the change in content length caused by r.
func (r Replacement) Delta() int {
	return len(r.Text) - r.Length
}

// String returns a human-readable representation of the replacement.
func (r Replacement) String() string {
	switch {
	case r.IsInsert():
		return fmt.Sprintf("%s: insert at %d %q", r.FilePath, r.Offset, r.Text)
	case r.IsDelete():
		return fmt.Sprintf("%s: delete [%d,%d)", r.FilePath, r.Offset, r.End())
	default:
		return fmt.Sprintf("%s: replace [%d,%d) with %q", r.FilePath, r.Offset, r.End(), r.Text)
	}
}

// Compare orders replacements by file path, offset, length, then text.
// Text only breaks ties between edits that necessarily conflict.
func Compare(a, b Replacement) int {
	if c := strings.Compare(a.FilePath, b.FilePath); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Length, b.Length); c != 0 {
		return c
	}
	return strings.Compare(a.Text, b.Text)
}

// Overlaps reports whether a and b cannot both be applied to the same file.
//
// Non-empty ranges overlap when they share a byte. An insertion conflicts
// with a range only when it falls strictly inside it. Two insertions at the
// same offset conflict unless identical, since their order is ambiguous.
func Overlaps(a, b Replacement) bool {
	if a.FilePath != b.FilePath || a == b {
		return false
	}

	switch {
	case a.IsInsert() && b.IsInsert():
		return a.Offset == b.Offset
	case a.IsInsert():
		return b.Offset < a.Offset && a.Offset < b.End()
	case b.IsInsert():
		return a.Offset < b.Offset && b.Offset < a.End()
	default:
		return a.Offset < b.End() && b.Offset < a.End()
	}
}

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// EditBuilder accumulates replacements for a single file.
type EditBuilder struct {
	Path  string
	Edits []Replacement
}

// NewEditBuilder creates a new EditBuilder targeting path.
func NewEditBuilder(path string) *EditBuilder {
	return &EditBuilder{
		Path:  path,
		Edits: make([]Replacement, 0),
	}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) {
	b.Edits = append(b.Edits, NewReplacement(b.Path, start, end-start, newText))
}

// Insert adds an edit that inserts text at the given offset.
func (b *EditBuilder) Insert(offset int, text string) {
	b.ReplaceRange(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *EditBuilder) Delete(start, end int) {
	b.ReplaceRange(start, end, "")
}

// AddTo adds every accumulated edit to set, returning the combined conflicts.
func (b *EditBuilder) AddTo(set *ReplacementSet) error {
	return set.addAll(b.Edits)
}
