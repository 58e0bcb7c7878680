package fix

import (
	"bytes"
	"fmt"
)

// ApplyEdits applies a sorted, conflict-free slice of edits to content.
// Each edit's offset refers to the original content.
//
// An edit extending past the end of content, or starting before the end of
// the previous edit, yields a *RangeError and no output. With no edits a
// copy of content is returned.
func ApplyEdits(content []byte, edits []Replacement) ([]byte, error) {
	if len(edits) == 0 {
		return bytes.Clone(content), nil
	}

	// Estimate result size.
	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out bytes.Buffer
	out.Grow(max(len(content)+delta, 0))

	cursor := 0
	for _, e := range edits {
		if err := checkEdit(e); err != nil {
			return nil, err
		}
		if e.End() > len(content) {
			return nil, &RangeError{
				Edit:       e,
				ContentLen: len(content),
				Message:    fmt.Sprintf("end offset %d exceeds content length %d", e.End(), len(content)),
			}
		}
		if e.Offset < cursor {
			return nil, &RangeError{
				Edit:       e,
				ContentLen: len(content),
				Message:    fmt.Sprintf("offset %d precedes end of previous edit at %d", e.Offset, cursor),
			}
		}

		// Copy content before this edit.
		out.Write(content[cursor:e.Offset])
		// Write replacement text.
		out.WriteString(e.Text)
		cursor = e.End()
	}
	// Copy remaining content.
	out.Write(content[cursor:])

	return out.Bytes(), nil
}

// ChangedRanges returns, for each edit in a sorted slice, the range its
// replacement text occupies in the content produced by ApplyEdits.
// Earlier edits shift later ones by their cumulative length delta.
func ChangedRanges(edits []Replacement) []Range {
	ranges := make([]Range, 0, len(edits))
	shift := 0
	for _, e := range edits {
		start := e.Offset + shift
		ranges = append(ranges, Range{Start: start, End: start + len(e.Text)})
		shift += e.Delta()
	}
	return ranges
}
