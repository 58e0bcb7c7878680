package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/refapply/pkg/runner"
)

// Exit codes for refapply.
const (
	// ExitSuccess indicates every file was saved, or nothing needed saving.
	ExitSuccess = runner.ExitSuccess

	// ExitFailures indicates the run completed but one or more files failed.
	ExitFailures = runner.ExitFailures

	// ExitAborted indicates the run stopped before any file was touched.
	ExitAborted = runner.ExitAborted

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65
)

// ErrFilesFailed is returned when a run completed with file failures.
var ErrFilesFailed = errors.New("one or more files failed")

// ErrRunAborted is returned when a run stopped before touching any file.
var ErrRunAborted = errors.New("run aborted")

// ErrConflictsFound is returned by check when replacements conflict.
var ErrConflictsFound = errors.New("conflicting replacements found")

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// errorForExitCode converts a runner exit code into a command error.
// It returns nil for ExitSuccess.
func errorForExitCode(code int) error {
	switch code {
	case ExitSuccess:
		return nil
	case ExitFailures:
		return &ExitError{Code: code, Err: ErrFilesFailed}
	default:
		return &ExitError{Code: code, Err: ErrRunAborted}
	}
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitAborted
}

// Reported reports whether err only signals an exit code for a run whose
// outcome was already printed.
func Reported(err error) bool {
	return errors.Is(err, ErrFilesFailed) || errors.Is(err, ErrRunAborted) || errors.Is(err, ErrConflictsFound)
}
