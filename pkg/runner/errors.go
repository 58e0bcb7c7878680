package runner

import (
	"errors"

	"github.com/yaklabco/refapply/pkg/format"
)

// Stage errors wrapped into FileOutcome.Error, for categorization via errors.Is.
var (
	// ErrRead indicates the file could not be read.
	ErrRead = errors.New("read failure")

	// ErrApply indicates the replacements did not fit the file content.
	ErrApply = errors.New("apply failure")

	// ErrFormat indicates formatting failed in strict mode.
	ErrFormat = format.ErrFormat

	// ErrWrite indicates the backup or the new content could not be written.
	ErrWrite = errors.New("write failure")

	// ErrModified indicates the file changed on disk after it was read.
	ErrModified = errors.New("file modified during processing")
)

// Run-level errors.
var (
	// ErrAborted indicates the run stopped before any file was touched.
	ErrAborted = errors.New("run aborted")

	// ErrNoFiles indicates Save was called with an empty set.
	ErrNoFiles = errors.New("no replacements to save")
)

// Process exit codes returned by RunAndSave.
const (
	// ExitSuccess means every file was saved.
	ExitSuccess = 0

	// ExitFailures means one or more files failed.
	ExitFailures = 1

	// ExitAborted means the run stopped before any file was touched.
	ExitAborted = 2
)
