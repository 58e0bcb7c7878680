package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/fsutil"
)

// ErrNoExports indicates discovery found no export files.
var ErrNoExports = errors.New("no replacement exports found")

// Loader reads export files into a replacement set. It implements runner.Tool.
type Loader struct {
	// Options selects the export files.
	Options DiscoverOptions

	// Jobs limits how many files are parsed concurrently.
	// 0 or negative means runtime.NumCPU().
	Jobs int

	// AllowEmpty makes an empty discovery succeed with no replacements.
	AllowEmpty bool
}

// NewLoader creates a Loader for the given discovery options.
func NewLoader(opts DiscoverOptions) *Loader {
	return &Loader{Options: opts}
}

// loaded is the parse result of one export file.
type loaded struct {
	path  string
	edits []fix.Replacement
}

// Run discovers and parses export files and adds their replacements to set.
//
// Files are parsed concurrently but added in sorted path order, so which of
// two conflicting replacements is kept does not depend on scheduling.
// Read and parse errors abort; conflicts are returned as a *fix.MergeError
// after every non-conflicting replacement has been added.
func (l *Loader) Run(ctx context.Context, set *fix.ReplacementSet) error {
	logger := logging.FromContext(ctx)

	files, err := Discover(ctx, l.Options)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if l.AllowEmpty {
			return nil
		}
		return ErrNoExports
	}
	logger.Debug("loading replacement exports", logging.FieldFiles, len(files))

	results, err := l.parseAll(ctx, files)
	if err != nil {
		return err
	}

	var conflicts []*fix.ConflictError
	for _, res := range results {
		var fileConflicts int
		for _, edit := range res.edits {
			if err := set.Add(edit); err != nil {
				var cerr *fix.ConflictError
				if !errors.As(err, &cerr) {
					return fmt.Errorf("%s: %w", res.path, err)
				}
				conflicts = append(conflicts, cerr)
				fileConflicts++
			}
		}
		logger.Debug("loaded export",
			logging.FieldPath, res.path,
			logging.FieldReplacements, len(res.edits),
			logging.FieldConflicts, fileConflicts)
	}

	if len(conflicts) > 0 {
		return &fix.MergeError{Conflicts: conflicts}
	}
	return nil
}

// Load is a convenience wrapper that runs the loader into a new set.
// Conflicts are returned alongside the set.
func (l *Loader) Load(ctx context.Context) (*fix.ReplacementSet, error) {
	set := fix.NewReplacementSet()
	err := l.Run(ctx, set)
	return set, err
}

func (l *Loader) parseAll(ctx context.Context, files []string) ([]loaded, error) {
	jobs := l.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]loaded, len(files))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	for i, path := range files {
		group.Go(func() error {
			data, _, err := fsutil.ReadFile(gctx, path)
			if err != nil {
				return fmt.Errorf("read export: %w", err)
			}
			doc, err := ParseExport(path, data)
			if err != nil {
				return err
			}
			edits, err := doc.Edits(filepath.Dir(path))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = loaded{path: path, edits: edits}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
