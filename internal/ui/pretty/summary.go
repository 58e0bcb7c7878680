package pretty

import (
	"strconv"
	"strings"

	"github.com/yaklabco/refapply/pkg/runner"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

// FormatSummaryOneLine formats a run as a single line naming its outcome class.
// Example: "2 files written, 1 failed (5 edits, 1 conflict)".
func (s *Styles) FormatSummaryOneLine(result *runner.Result) string {
	if result == nil {
		return s.Dim.Render("Nothing to do") + "\n"
	}

	if result.Aborted != nil {
		return s.Failure.Render("Aborted before any file was touched") +
			s.Dim.Render(": "+result.Aborted.Error()) + "\n"
	}

	stats := result.Stats
	if stats.FilesTotal == 0 {
		msg := s.Success.Render("No replacements to apply")
		if stats.Conflicts > 0 {
			msg += s.Dim.Render(" (" + pluralize(stats.Conflicts, "conflict", "conflicts") + ")")
		}
		return msg + "\n"
	}

	var parts []string
	if stats.FilesWritten > 0 {
		parts = append(parts, s.Success.Render(pluralize(stats.FilesWritten, wordFile, wordFiles)+" written"))
	}
	if stats.FilesPending > 0 {
		parts = append(parts, s.Warning.Render(pluralize(stats.FilesPending, wordFile, wordFiles)+" would change"))
	}
	if applied := countStatus(result, runner.StatusApplied); applied > 0 {
		parts = append(parts, s.Success.Render(pluralize(applied, wordFile, wordFiles)+" applied"))
	}
	if stats.FilesUnformatted > 0 {
		parts = append(parts, s.Warning.Render(strconv.Itoa(stats.FilesUnformatted)+" unformatted"))
	}
	if stats.FilesUnchanged > 0 {
		parts = append(parts, s.Dim.Render(strconv.Itoa(stats.FilesUnchanged)+" unchanged"))
	}
	if stats.FilesFailed > 0 {
		parts = append(parts, s.Failure.Render(strconv.Itoa(stats.FilesFailed)+" failed"))
	}

	details := []string{pluralize(stats.EditsApplied, "edit", "edits")}
	if stats.Conflicts > 0 {
		details = append(details, pluralize(stats.Conflicts, "conflict", "conflicts"))
	}

	return strings.Join(parts, ", ") + s.Dim.Render(" ("+strings.Join(details, ", ")+")") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(result *runner.Result) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	if result == nil {
		result = &runner.Result{}
	}
	stats := result.Stats

	builder.WriteString("  Replacements:      " +
		s.SummaryValue.Render(strconv.Itoa(stats.Replacements)) + "\n")
	if stats.Conflicts > 0 {
		builder.WriteString("  Conflicts:         " +
			s.Warning.Render(strconv.Itoa(stats.Conflicts)) + "\n")
	}
	builder.WriteString("  Edits applied:     " +
		s.SummaryValue.Render(strconv.Itoa(stats.EditsApplied)) + "\n")

	builder.WriteString("\n")

	builder.WriteString("  Files:             " +
		s.SummaryValue.Render(strconv.Itoa(stats.FilesTotal)) + "\n")
	if stats.FilesWritten > 0 {
		builder.WriteString("    Written:         " +
			s.Success.Render(strconv.Itoa(stats.FilesWritten)) + "\n")
	}
	if stats.FilesPending > 0 {
		builder.WriteString("    Would change:    " +
			s.Warning.Render(strconv.Itoa(stats.FilesPending)) + "\n")
	}
	if stats.FilesUnformatted > 0 {
		builder.WriteString("    Unformatted:     " +
			s.Warning.Render(strconv.Itoa(stats.FilesUnformatted)) + "\n")
	}
	if stats.FilesUnchanged > 0 {
		builder.WriteString("    Unchanged:       " +
			s.Dim.Render(strconv.Itoa(stats.FilesUnchanged)) + "\n")
	}
	if stats.FilesFailed > 0 {
		builder.WriteString("    Failed:          " +
			s.Failure.Render(strconv.Itoa(stats.FilesFailed)) + "\n")
	}

	builder.WriteString("\n")

	switch {
	case result.Aborted != nil:
		builder.WriteString(s.Failure.Render("Aborted before any file was touched"))
	case stats.FilesFailed > 0:
		builder.WriteString(s.Warning.Render("Completed with " +
			pluralize(stats.FilesFailed, "file failure", "file failures")))
	default:
		builder.WriteString(s.Success.Render("All files succeeded"))
	}
	builder.WriteString("\n")

	return builder.String()
}

// countStatus counts outcomes with the given status.
func countStatus(result *runner.Result, status runner.Status) int {
	var n int
	for _, f := range result.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}
