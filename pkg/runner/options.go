// Package runner applies a ReplacementSet to files and saves the results.
package runner

import (
	"runtime"

	"github.com/yaklabco/refapply/pkg/format"
)

// Options controls how a replacement set is applied and saved.
type Options struct {
	// Style names the formatting style applied after replacements.
	// Empty means format.DefaultStyle; "none" disables formatting.
	Style string

	// Strict makes a formatting failure fail the file. When false the
	// unformatted result is saved and the file is marked StatusUnformatted.
	Strict bool

	// DryRun computes results and diffs without writing anything.
	DryRun bool

	// Diff records a unified diff for every changed file. Dry runs always do.
	Diff bool

	// Jobs controls the maximum number of concurrent workers.
	// 0 or negative means "auto" (runtime.NumCPU()).
	Jobs int

	// AllowEmpty permits saving an empty set. Otherwise Save returns ErrNoFiles.
	AllowEmpty bool

	// CheckModified fails a file with ErrModified if it changed on disk
	// between read and write. Requires a FileAccess that implements
	// fsutil.ModificationChecker.
	CheckModified bool

	// FailOnConflict aborts RunAndSave when the tool reports conflicting
	// replacements. By default conflicts are recorded and the accepted
	// replacements are still saved.
	FailOnConflict bool
}

// DefaultOptions returns options with lenient formatting by file style and
// race detection enabled.
func DefaultOptions() Options {
	return Options{
		Style:         format.DefaultStyle,
		CheckModified: true,
	}
}

// effectiveJobs returns the worker count for n files.
func (o Options) effectiveJobs(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than files.
	return max(min(jobs, n), 1)
}

// effectiveStyle returns the formatting style, defaulting if empty.
func (o Options) effectiveStyle() string {
	if o.Style == "" {
		return format.DefaultStyle
	}
	return o.Style
}
