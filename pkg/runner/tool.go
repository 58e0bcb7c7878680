package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/fix"
)

// Tool produces replacements. Run adds them to set; an error aborts the run
// unless it only reports conflicting replacements (see fix.MergeError).
type Tool interface {
	Run(ctx context.Context, set *fix.ReplacementSet) error
}

// ToolFunc adapts a function to the Tool interface.
type ToolFunc func(ctx context.Context, set *fix.ReplacementSet) error

// Run implements Tool.
func (f ToolFunc) Run(ctx context.Context, set *fix.ReplacementSet) error {
	return f(ctx, set)
}

// RunAndSave runs tool, then saves the replacements it produced.
//
// If the tool fails, no file is touched and the result is aborted.
// Conflicts reported by the tool are recorded in Result.Conflicts; they abort
// the run only with opts.FailOnConflict. The returned exit code is
// ExitSuccess, ExitFailures or ExitAborted.
func (r *Runner) RunAndSave(ctx context.Context, tool Tool, opts Options) (*Result, int) {
	logger := logging.FromContext(ctx)
	set := fix.NewReplacementSet()

	err := tool.Run(ctx, set)
	conflicts := fix.Conflicts(err)
	if err != nil && !conflictsOnly(err) {
		return aborted(ctx, set, conflicts, fmt.Errorf("%w: tool failed: %w", ErrAborted, err))
	}
	if len(conflicts) > 0 {
		logger.Warn("conflicting replacements rejected", logging.FieldConflicts, len(conflicts))
		if opts.FailOnConflict {
			return aborted(ctx, set, conflicts, fmt.Errorf("%w: %w", ErrAborted, err))
		}
	}

	if err := set.Validate(); err != nil {
		return aborted(ctx, set, conflicts, fmt.Errorf("%w: %w", ErrAborted, err))
	}

	opts.AllowEmpty = true
	result, err := r.Save(ctx, set, opts)
	if result == nil {
		result = &Result{}
	}
	result.Conflicts = conflicts
	result.Stats.Conflicts = len(conflicts)
	if err != nil {
		// Unprocessed files are already recorded as skipped.
		logger.Warn("save interrupted", logging.FieldError, err)
	}
	return result, result.ExitCode()
}

func aborted(ctx context.Context, set *fix.ReplacementSet, conflicts []*fix.ConflictError, err error) (*Result, int) {
	logging.FromContext(ctx).Error("run aborted before saving", logging.FieldError, err)
	result := &Result{
		Conflicts: conflicts,
		Aborted:   err,
	}
	result.Stats.Replacements = set.Len()
	result.Stats.Conflicts = len(conflicts)
	return result, ExitAborted
}

// conflictsOnly reports whether err carries nothing but replacement conflicts.
func conflictsOnly(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		for _, e := range errs {
			if !conflictsOnly(e) {
				return false
			}
		}
		return len(errs) > 0
	}
	var merr *fix.MergeError
	var cerr *fix.ConflictError
	return errors.As(err, &merr) || errors.As(err, &cerr)
}
