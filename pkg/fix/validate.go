package fix

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrInvalidEdit indicates a replacement with a negative offset or length.
	ErrInvalidEdit = errors.New("invalid edit")

	// ErrConflict indicates two distinct replacements overlap in one file.
	ErrConflict = errors.New("conflicting edits")

	// ErrOutOfRange indicates a replacement does not fit the content it is applied to.
	ErrOutOfRange = errors.New("edit out of range")

	// ErrFrozen indicates an insertion into a set that was already handed off.
	ErrFrozen = errors.New("replacement set is frozen")
)

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    Replacement
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit %s [%d:%d]: %s", e.Edit.FilePath, e.Edit.Offset, e.Edit.End(), e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEdit
}

// RangeError describes an edit that does not fit the content length.
type RangeError struct {
	Edit       Replacement
	ContentLen int
	Message    string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("edit %s [%d:%d] out of range: %s", e.Edit.FilePath, e.Edit.Offset, e.Edit.End(), e.Message)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// ConflictError describes overlapping edits.
// Existing is the edit already accepted; Incoming is the one rejected.
type ConflictError struct {
	Existing    Replacement
	Incoming    Replacement
	Description string
}

func newConflict(existing, incoming Replacement) *ConflictError {
	return &ConflictError{
		Existing: existing,
		Incoming: incoming,
		Description: fmt.Sprintf("[%d,%d) %q overlaps [%d,%d) %q in %s",
			incoming.Offset, incoming.End(), incoming.Text,
			existing.Offset, existing.End(), existing.Text,
			existing.FilePath),
	}
}

func (e *ConflictError) Error() string {
	return "overlapping edits: " + e.Description
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// MergeError collects every conflict found while merging sets.
type MergeError struct {
	Conflicts []*ConflictError
}

func (e *MergeError) Error() string {
	if len(e.Conflicts) == 1 {
		return e.Conflicts[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d conflicting edits", len(e.Conflicts))
	for _, c := range e.Conflicts {
		b.WriteString("\n  ")
		b.WriteString(c.Description)
	}
	return b.String()
}

func (e *MergeError) Unwrap() []error {
	errs := make([]error, len(e.Conflicts))
	for i, c := range e.Conflicts {
		errs[i] = c
	}
	return errs
}

// Conflicts extracts every ConflictError carried by err.
func Conflicts(err error) []*ConflictError {
	if err == nil {
		return nil
	}
	var merr *MergeError
	if errors.As(err, &merr) {
		return merr.Conflicts
	}
	var cerr *ConflictError
	if errors.As(err, &cerr) {
		return []*ConflictError{cerr}
	}
	return nil
}

// checkEdit rejects negative offsets and lengths.
func checkEdit(edit Replacement) error {
	if edit.Offset < 0 {
		return &ValidationError{Edit: edit, Message: "offset is negative"}
	}
	if edit.Length < 0 {
		return &ValidationError{Edit: edit, Message: "length is negative"}
	}
	if edit.End() < edit.Offset {
		return &ValidationError{Edit: edit, Message: "range overflows"}
	}
	return nil
}

// ValidateEdits checks that all edits have valid ranges for the given content length.
// Returns nil if all edits are valid, or the first validation error encountered.
func ValidateEdits(edits []Replacement, contentLen int) error {
	for _, edit := range edits {
		if err := checkEdit(edit); err != nil {
			return err
		}
		if edit.End() > contentLen {
			return &RangeError{
				Edit:       edit,
				ContentLen: contentLen,
				Message:    fmt.Sprintf("end offset %d exceeds content length %d", edit.End(), contentLen),
			}
		}
	}
	return nil
}

// SortEdits sorts edits into application order.
func SortEdits(edits []Replacement) {
	slices.SortFunc(edits, Compare)
}

// DetectConflicts checks for overlapping edits in a sorted single-file slice.
// Returns nil if no conflicts, or a MergeError listing each conflicting neighbour pair.
func DetectConflicts(edits []Replacement) error {
	var conflicts []*ConflictError
	for i := 1; i < len(edits); i++ {
		prev := edits[i-1]
		curr := edits[i]
		if Overlaps(prev, curr) {
			conflicts = append(conflicts, newConflict(prev, curr))
		}
	}
	if len(conflicts) > 0 {
		return &MergeError{Conflicts: conflicts}
	}
	return nil
}

// PrepareEdits validates, sorts, and checks for conflicts.
// Returns the sorted edits and any error encountered.
func PrepareEdits(edits []Replacement, contentLen int) ([]Replacement, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	result := slices.Clone(edits)
	SortEdits(result)
	result = slices.Compact(result)

	if err := DetectConflicts(result); err != nil {
		return nil, err
	}

	return result, nil
}
