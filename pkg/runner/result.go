package runner

import (
	"github.com/yaklabco/refapply/pkg/fix"
)

// Status is the final state of one file.
type Status string

const (
	// StatusWritten means the new content was saved.
	StatusWritten Status = "written"

	// StatusUnformatted means the new content was saved, or stored in memory
	// by an apply-only run, without formatting because the formatter failed.
	StatusUnformatted Status = "unformatted"

	// StatusUnchanged means the replacements produced the original content.
	StatusUnchanged Status = "unchanged"

	// StatusPending means a dry run computed new content without writing it.
	StatusPending Status = "pending"

	// StatusApplied means the new content was stored in memory only.
	StatusApplied Status = "applied"

	// StatusFailed means the file was left untouched because of Error.
	StatusFailed Status = "failed"

	// StatusSkipped means the run was cancelled before the file was processed.
	StatusSkipped Status = "skipped"
)

// FileOutcome is the result of saving one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Status is the final state of the file.
	Status Status

	// Error is set if the file failed or was skipped.
	Error error

	// FormatError holds the formatter failure for StatusUnformatted files.
	FormatError error

	// EditsApplied is the number of replacements applied to the file.
	EditsApplied int

	// Formatted is true if the formatter ran successfully.
	Formatted bool

	// Written is true if the file was written.
	Written bool

	// BackupCreated is true if a backup was created before writing.
	BackupCreated bool

	// Diff is the unified diff for dry-run mode (nil otherwise or if unchanged).
	Diff *fix.Diff
}

// Failed reports whether the file was not saved because of an error.
func (o FileOutcome) Failed() bool {
	return o.Error != nil
}

// Stats captures aggregate information about a run.
type Stats struct {
	// Replacements is the number of replacements in the set.
	Replacements int

	// Conflicts is the number of replacements rejected as conflicting.
	Conflicts int

	// FilesTotal is the number of files with replacements.
	FilesTotal int

	// FilesWritten is the number of files written.
	FilesWritten int

	// FilesUnchanged is the number of files whose content did not change.
	FilesUnchanged int

	// FilesUnformatted is the number of files saved without formatting.
	FilesUnformatted int

	// FilesPending is the number of files with changes left unwritten by a dry run.
	FilesPending int

	// FilesFailed is the number of files that failed or were skipped.
	FilesFailed int

	// EditsApplied is the total number of replacements applied.
	EditsApplied int
}

// Result is the overall result of a run.
type Result struct {
	// Files contains the outcome for each file, ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats

	// Conflicts lists replacements the tool produced but the set rejected.
	Conflicts []*fix.ConflictError

	// Aborted is set if the run stopped before any file was touched.
	Aborted error
}

// Success reports whether no file failed and the run was not aborted.
func (r *Result) Success() bool {
	if r == nil {
		return false
	}
	return r.Aborted == nil && r.Stats.FilesFailed == 0
}

// Failures returns the outcomes of files that failed.
func (r *Result) Failures() []FileOutcome {
	if r == nil {
		return nil
	}
	var failed []FileOutcome
	for _, f := range r.Files {
		if f.Failed() {
			failed = append(failed, f)
		}
	}
	return failed
}

// ExitCode maps the result to a process exit code.
func (r *Result) ExitCode() int {
	switch {
	case r == nil || r.Aborted != nil:
		return ExitAborted
	case r.Stats.FilesFailed > 0:
		return ExitFailures
	default:
		return ExitSuccess
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	r.Stats.FilesTotal++

	if outcome.Failed() {
		r.Stats.FilesFailed++
		return
	}

	r.Stats.EditsApplied += outcome.EditsApplied
	if outcome.Written {
		r.Stats.FilesWritten++
	}

	switch outcome.Status {
	case StatusUnchanged:
		r.Stats.FilesUnchanged++
	case StatusUnformatted:
		r.Stats.FilesUnformatted++
	case StatusPending:
		r.Stats.FilesPending++
	}
}
