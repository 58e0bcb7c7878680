package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/runner"
)

// maxSnippet bounds replacement text shown in conflict lines.
const maxSnippet = 32

// FormatOutcome formats one file outcome as a single line.
// Example: "  src/a.cc  written  3 edits (backup)".
func (s *Styles) FormatOutcome(outcome runner.FileOutcome) string {
	var builder strings.Builder

	builder.WriteString("  ")
	builder.WriteString(s.FilePath.Render(outcome.Path))
	builder.WriteString("  ")
	builder.WriteString(s.StatusStyle(outcome.Status).Render(string(outcome.Status)))

	switch {
	case outcome.Error != nil:
		builder.WriteString("  ")
		builder.WriteString(s.Message.Render(outcome.Error.Error()))
	case outcome.EditsApplied > 0:
		builder.WriteString("  ")
		builder.WriteString(s.Dim.Render(pluralize(outcome.EditsApplied, "edit", "edits")))
	}

	if outcome.BackupCreated {
		builder.WriteString(s.Dim.Render(" (backup)"))
	}
	builder.WriteString("\n")

	if outcome.FormatError != nil {
		builder.WriteString("    ")
		builder.WriteString(s.Warning.Render("format:"))
		builder.WriteString(" ")
		builder.WriteString(s.Message.Render(outcome.FormatError.Error()))
		builder.WriteString("\n")
	}

	return builder.String()
}

// FormatConflict formats a rejected replacement and the one it collided with.
// Example: "  src/a.cc:12  conflict  [12,15) "xyz" vs kept [13,16) "abc"".
func (s *Styles) FormatConflict(conflict *fix.ConflictError) string {
	incoming := conflict.Incoming
	existing := conflict.Existing

	location := s.FilePath.Render(incoming.FilePath) +
		s.Location.Render(":"+strconv.Itoa(incoming.Offset))

	return fmt.Sprintf("  %s  %s  %s %s vs kept %s %s\n",
		location,
		s.Warning.Render("conflict"),
		s.Dim.Render(span(incoming)),
		s.Removed.Render(snippet(incoming.Text)),
		s.Dim.Render(span(existing)),
		s.Inserted.Render(snippet(existing.Text)),
	)
}

// FormatFileHeader formats a file header with its edit count.
func (s *Styles) FormatFileHeader(path string, edits int) string {
	return s.FilePath.Render(path) + s.Dim.Render(" ("+pluralize(edits, "edit", "edits")+")")
}

// span renders the byte range a replacement covers.
func span(r fix.Replacement) string {
	return fmt.Sprintf("[%d,%d)", r.Offset, r.End())
}

// snippet quotes text, shortening long replacements.
func snippet(text string) string {
	if len(text) > maxSnippet {
		text = text[:maxSnippet-3] + "..."
	}
	return strconv.Quote(text)
}

// pluralize formats a count with the matching noun.
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + plural
}
