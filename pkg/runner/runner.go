package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/format"
	"github.com/yaklabco/refapply/pkg/fsutil"
)

// Runner applies replacement sets to files and saves the results.
type Runner struct {
	// Files reads and writes file content.
	Files fsutil.FileAccess

	// Formatter reformats files after replacements. Nil disables formatting.
	Formatter format.Formatter
}

// New creates a Runner.
func New(files fsutil.FileAccess, formatter format.Formatter) *Runner {
	return &Runner{Files: files, Formatter: formatter}
}

// fileFunc processes one file group into an outcome.
type fileFunc func(ctx context.Context, group *fix.FileEditGroup) FileOutcome

// Save applies every replacement in set to its file and writes the result.
//
// Files are processed concurrently and independently: a failure in one file
// is recorded in its outcome and never prevents other files from being
// saved. For each file Save:
//   - Reads the original content
//   - Applies the file's replacements in ascending offset order
//   - Formats the changed regions
//   - Generates a diff (dry run) or backs up and writes the new content
//
// The set is frozen for the duration of the call. Save returns an error only
// for an empty set without opts.AllowEmpty, or when ctx is cancelled.
func (r *Runner) Save(ctx context.Context, set *fix.ReplacementSet, opts Options) (*Result, error) {
	return r.run(ctx, set, opts, func(ctx context.Context, group *fix.FileEditGroup) FileOutcome {
		return r.saveFile(ctx, group, opts)
	})
}

// ApplyAll applies every replacement in set to the matching file in buffers
// and stores the formatted result back into buffers. Nothing is written to
// disk. Outcomes have StatusApplied, StatusUnformatted or StatusUnchanged on
// success; files left unprocessed by a cancelled ctx have StatusSkipped.
func (r *Runner) ApplyAll(ctx context.Context, set *fix.ReplacementSet, buffers *Buffers, opts Options) *Result {
	opts.AllowEmpty = true
	opts.DryRun = false
	// With AllowEmpty the only error is cancellation, already recorded per file.
	result, _ := r.run(ctx, set, opts, func(ctx context.Context, group *fix.FileEditGroup) FileOutcome {
		return r.applyFile(ctx, group, buffers, opts)
	})
	return result
}

func (r *Runner) run(ctx context.Context, set *fix.ReplacementSet, opts Options, process fileFunc) (*Result, error) {
	result := &Result{}
	if set == nil || set.Len() == 0 {
		if !opts.AllowEmpty {
			return nil, ErrNoFiles
		}
		return result, nil
	}

	set.Freeze()
	groups := fix.GroupSorted(set)
	result.Files = make([]FileOutcome, 0, len(groups))
	result.Stats.Replacements = set.Len()

	logger := logging.FromContext(ctx)
	jobs := opts.effectiveJobs(len(groups))
	logger.Debug("saving replacements",
		logging.FieldFiles, len(groups),
		logging.FieldReplacements, set.Len(),
		logging.FieldJobs, jobs,
		logging.FieldDryRun, opts.DryRun)

	// Create channels.
	workCh := make(chan *fix.FileEditGroup)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for group := range workCh {
				select {
				case <-ctx.Done():
					return
				default:
				}

				outcome := process(logging.WithFile(ctx, group.Path), group)

				select {
				case <-ctx.Done():
					return
				case outCh <- outcome:
				}
			}
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for _, group := range groups {
			select {
			case <-ctx.Done():
				return
			case workCh <- group:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Workers complete out of order; collect by path.
	outcomes := make(map[string]FileOutcome, len(groups))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	// Build result in deterministic order.
	for _, group := range groups {
		outcome, ok := outcomes[group.Path]
		if !ok {
			outcome = FileOutcome{
				Path:   group.Path,
				Status: StatusSkipped,
				Error:  fmt.Errorf("skipped: %w", context.Cause(ctx)),
			}
		}
		if outcome.Failed() {
			logger.Warn("file not saved",
				logging.FieldPath, outcome.Path,
				logging.FieldStatus, outcome.Status,
				logging.FieldError, outcome.Error)
		}
		result.accumulate(outcome)
	}

	logger.Debug("save complete",
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldFilesUnchanged, result.Stats.FilesUnchanged,
		logging.FieldFilesFailed, result.Stats.FilesFailed)

	// Check for context error.
	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// saveFile runs the read, apply, format and write stages for one file.
func (r *Runner) saveFile(ctx context.Context, group *fix.FileEditGroup, opts Options) FileOutcome {
	outcome := FileOutcome{Path: group.Path}

	original, info, err := r.Files.Read(ctx, group.Path)
	if err != nil {
		return outcome.fail(fmt.Errorf("%w: %w", ErrRead, err))
	}

	content, err := r.transform(ctx, group, original, opts, &outcome)
	if err != nil {
		return outcome.fail(err)
	}

	if bytes.Equal(content, original) {
		outcome.Status = StatusUnchanged
		return outcome
	}

	if opts.DryRun || opts.Diff {
		outcome.Diff = fix.GenerateDiff(group.Path, original, content)
	}
	if opts.DryRun {
		outcome.Status = StatusPending
		return outcome
	}

	if opts.CheckModified {
		if checker, ok := r.Files.(fsutil.ModificationChecker); ok {
			modified, err := checker.CheckModified(ctx, info)
			if err != nil {
				return outcome.fail(fmt.Errorf("%w: %w", ErrRead, err))
			}
			if modified {
				return outcome.fail(fmt.Errorf("%w: %s", ErrModified, group.Path))
			}
		}
	}

	if backupper, ok := r.Files.(fsutil.Backupper); ok {
		created, err := backupper.Backup(ctx, group.Path)
		if err != nil {
			return outcome.fail(fmt.Errorf("%w: backup: %w", ErrWrite, err))
		}
		outcome.BackupCreated = created
	}

	if err := r.Files.Write(ctx, group.Path, content, info.Mode); err != nil {
		return outcome.fail(fmt.Errorf("%w: %w", ErrWrite, err))
	}
	outcome.Written = true

	if outcome.FormatError != nil {
		outcome.Status = StatusUnformatted
	} else {
		outcome.Status = StatusWritten
	}
	return outcome
}

// applyFile runs the load, apply and format stages for one buffered file.
func (r *Runner) applyFile(ctx context.Context, group *fix.FileEditGroup, buffers *Buffers, opts Options) FileOutcome {
	outcome := FileOutcome{Path: group.Path}

	original, err := buffers.Load(ctx, group.Path)
	if err != nil {
		return outcome.fail(fmt.Errorf("%w: %w", ErrRead, err))
	}

	content, err := r.transform(ctx, group, original, opts, &outcome)
	if err != nil {
		return outcome.fail(err)
	}

	if bytes.Equal(content, original) {
		outcome.Status = StatusUnchanged
		return outcome
	}

	buffers.Set(group.Path, content)
	if outcome.FormatError != nil {
		outcome.Status = StatusUnformatted
	} else {
		outcome.Status = StatusApplied
	}
	return outcome
}

// transform applies the group's edits to original and formats the result.
// A lenient formatting failure is recorded in outcome.FormatError.
func (r *Runner) transform(
	ctx context.Context,
	group *fix.FileEditGroup,
	original []byte,
	opts Options,
	outcome *FileOutcome,
) ([]byte, error) {
	content, err := fix.ApplyEdits(original, group.Edits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrApply, err)
	}
	outcome.EditsApplied = len(group.Edits)

	style := opts.effectiveStyle()
	if r.Formatter == nil || style == format.StyleNone {
		return content, nil
	}

	formatted, err := r.Formatter.Format(ctx, format.Request{
		Path:     group.Path,
		Content:  content,
		Original: original,
		Style:    style,
		Changed:  fix.ChangedRanges(group.Edits),
	})
	if err != nil {
		if opts.Strict {
			if errors.Is(err, ErrFormat) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrFormat, err)
		}
		logging.FromContext(ctx).Warn("formatting failed, keeping unformatted result",
			logging.FieldStyle, style,
			logging.FieldError, err)
		outcome.FormatError = err
		return content, nil
	}

	outcome.Formatted = true
	return formatted, nil
}

// fail marks the outcome as failed with err.
func (o FileOutcome) fail(err error) FileOutcome {
	o.Status = StatusFailed
	o.Error = err
	o.Written = false
	o.Diff = nil
	return o
}
