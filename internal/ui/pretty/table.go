package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/refapply/pkg/runner"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // FILE, STATUS, EDITS, DETAIL
	minFileWidth     = 20
	minStatusWidth   = 11
	minEditsWidth    = 5
	minDetailWidth   = 20
	heavySeparator   = "="
	defaultTermWidth = 100
)

// TableRow represents a single row in the outcome table.
type TableRow struct {
	File   string
	Status runner.Status
	Edits  string
	Detail string
}

// TableFormatter formats file outcomes as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

type columnWidths struct {
	file   int
	status int
	edits  int
	detail int
}

// FormatTable formats runner results as a styled table.
func (t *TableFormatter) FormatTable(result *runner.Result) string {
	if result == nil || len(result.Files) == 0 {
		return ""
	}

	rows := make([]TableRow, 0, len(result.Files))
	for _, file := range result.Files {
		rows = append(rows, OutcomeToTableRow(file))
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")

	return builder.String()
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(stats runner.Stats) string {
	parts := []string{pluralize(stats.FilesTotal, wordFile, wordFiles)}

	if stats.FilesWritten > 0 {
		parts = append(parts, t.styles.Success.Render(fmt.Sprintf("%d written", stats.FilesWritten)))
	}
	if stats.FilesPending > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d would change", stats.FilesPending)))
	}
	if stats.FilesFailed > 0 {
		parts = append(parts, t.styles.Failure.Render(fmt.Sprintf("%d failed", stats.FilesFailed)))
	}
	if stats.Conflicts > 0 {
		parts = append(parts, t.styles.Warning.Render(pluralize(stats.Conflicts, "conflict", "conflicts")))
	}

	return " " + strings.Join(parts, " | ")
}

// calculateColumnWidths determines column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		file:   minFileWidth,
		status: minStatusWidth,
		edits:  minEditsWidth,
		detail: minDetailWidth,
	}

	for _, row := range rows {
		widths.file = max(widths.file, len(row.File))
		widths.status = max(widths.status, len(row.Status))
		widths.edits = max(widths.edits, len(row.Edits))
		widths.detail = max(widths.detail, len(row.Detail))
	}

	// Shrink detail first, then file, to fit the terminal.
	totalWidth := calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.detail = max(minDetailWidth, widths.detail-excess)

		totalWidth = calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.file = max(minFileWidth, widths.file-excess)
		}
	}

	return widths
}

// calculateTotalWidth calculates the total table width from column widths.
func calculateTotalWidth(widths columnWidths) int {
	return widths.file + widths.status + widths.edits + widths.detail + tablePadding*tableColumnCount
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %*s  %-*s ",
		widths.file, "FILE",
		widths.status, "STATUS",
		widths.edits, "EDITS",
		widths.detail, "DETAIL",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(widths columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, calculateTotalWidth(widths)))
}

// formatRow formats a single table row with status-based styling.
func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	status := fmt.Sprintf("%-*s", widths.status, row.Status)
	return fmt.Sprintf(" %-*s  %s  %*s  %s",
		widths.file, truncateFilePath(row.File, widths.file),
		t.styles.StatusStyle(row.Status).Render(status),
		widths.edits, row.Edits,
		t.styles.Dim.Render(truncateString(row.Detail, widths.detail)),
	)
}

// OutcomeToTableRow converts a file outcome to a table row.
func OutcomeToTableRow(outcome runner.FileOutcome) TableRow {
	row := TableRow{
		File:   outcome.Path,
		Status: outcome.Status,
		Edits:  strconv.Itoa(outcome.EditsApplied),
	}

	switch {
	case outcome.Error != nil:
		row.Detail = outcome.Error.Error()
	case outcome.FormatError != nil:
		row.Detail = outcome.FormatError.Error()
	case outcome.BackupCreated:
		row.Detail = "backup created"
	}

	return row
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
