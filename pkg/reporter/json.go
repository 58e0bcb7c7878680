package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version   string           `json:"version"`
	Aborted   string           `json:"aborted,omitempty"`
	Files     []JSONFileResult `json:"files"`
	Conflicts []JSONConflict   `json:"conflicts"`
	Summary   JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's outcome.
type JSONFileResult struct {
	Path          string `json:"path"`
	Status        string `json:"status"`
	EditsApplied  int    `json:"editsApplied"`
	Written       bool   `json:"written"`
	BackupCreated bool   `json:"backupCreated,omitempty"`
	Error         string `json:"error,omitempty"`
	FormatError   string `json:"formatError,omitempty"`
	Diff          string `json:"diff,omitempty"`
}

// JSONReplacement is a replacement in export form.
type JSONReplacement struct {
	FilePath        string `json:"filePath"`
	Offset          int    `json:"offset"`
	Length          int    `json:"length"`
	ReplacementText string `json:"replacementText"`
}

// JSONConflict pairs a rejected replacement with the one it collided with.
type JSONConflict struct {
	Rejected JSONReplacement `json:"rejected"`
	Existing JSONReplacement `json:"existing"`
	Message  string          `json:"message"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	Replacements     int  `json:"replacements"`
	Conflicts        int  `json:"conflicts"`
	EditsApplied     int  `json:"editsApplied"`
	FilesTotal       int  `json:"filesTotal"`
	FilesWritten     int  `json:"filesWritten"`
	FilesUnchanged   int  `json:"filesUnchanged"`
	FilesUnformatted int  `json:"filesUnformatted"`
	FilesPending     int  `json:"filesPending"`
	FilesFailed      int  `json:"filesFailed"`
	Success          bool `json:"success"`
	ExitCode         int  `json:"exitCode"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output, changedFiles := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return changedFiles, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) (*JSONOutput, int) {
	output := &JSONOutput{
		Version:   "1.0.0",
		Files:     make([]JSONFileResult, 0),
		Conflicts: make([]JSONConflict, 0),
	}

	if result == nil {
		output.Summary.ExitCode = runner.ExitAborted
		return output, 0
	}

	if result.Aborted != nil {
		output.Aborted = result.Aborted.Error()
	}

	var changedFiles int
	for _, file := range result.Files {
		entry := JSONFileResult{
			Path:          displayPath(file.Path, r.opts.WorkingDir),
			Status:        string(file.Status),
			EditsApplied:  file.EditsApplied,
			Written:       file.Written,
			BackupCreated: file.BackupCreated,
		}
		if file.Error != nil {
			entry.Error = file.Error.Error()
		}
		if file.FormatError != nil {
			entry.FormatError = file.FormatError.Error()
		}
		if file.Diff.HasChanges() {
			entry.Diff = file.Diff.String()
		}
		if changed(file) {
			changedFiles++
		}
		output.Files = append(output.Files, entry)
	}

	for _, conflict := range result.Conflicts {
		output.Conflicts = append(output.Conflicts, JSONConflict{
			Rejected: r.replacement(conflict.Incoming),
			Existing: r.replacement(conflict.Existing),
			Message:  conflict.Error(),
		})
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		Replacements:     stats.Replacements,
		Conflicts:        stats.Conflicts,
		EditsApplied:     stats.EditsApplied,
		FilesTotal:       stats.FilesTotal,
		FilesWritten:     stats.FilesWritten,
		FilesUnchanged:   stats.FilesUnchanged,
		FilesUnformatted: stats.FilesUnformatted,
		FilesPending:     stats.FilesPending,
		FilesFailed:      stats.FilesFailed,
		Success:          result.Success(),
		ExitCode:         result.ExitCode(),
	}

	return output, changedFiles
}

func (r *JSONReporter) replacement(rep fix.Replacement) JSONReplacement {
	return JSONReplacement{
		FilePath:        displayPath(rep.FilePath, r.opts.WorkingDir),
		Offset:          rep.Offset,
		Length:          rep.Length,
		ReplacementText: rep.Text,
	}
}
