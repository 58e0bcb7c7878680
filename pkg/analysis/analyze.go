// Package analysis summarizes a replacement set per target file.
package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/refapply/pkg/fix"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

// analysisContext holds temporary state during analysis.
type analysisContext struct {
	fileMap map[string]*FileAnalysis
}

// newAnalysisContext creates a new analysis context.
func newAnalysisContext() *analysisContext {
	return &analysisContext{
		fileMap: make(map[string]*FileAnalysis),
	}
}

// getOrCreateFileAnalysis returns existing or creates new FileAnalysis.
func (ctx *analysisContext) getOrCreateFileAnalysis(path string) *FileAnalysis {
	if _, ok := ctx.fileMap[path]; !ok {
		ctx.fileMap[path] = &FileAnalysis{Path: path}
	}
	return ctx.fileMap[path]
}

// countReplacement updates file and report totals for one replacement.
func countReplacement(edit fix.Replacement, totals *Totals, fa *FileAnalysis) {
	totals.Replacements++
	fa.Replacements++

	switch {
	case edit.IsInsert():
		totals.Insertions++
		fa.Insertions++
	case edit.IsDelete():
		totals.Deletions++
		fa.Deletions++
	}

	totals.BytesRemoved += edit.Length
	totals.BytesInserted += len(edit.Text)
	fa.BytesRemoved += edit.Length
	fa.BytesInserted += len(edit.Text)
	fa.Delta += edit.Delta()
}

// newReplacementEntry converts a replacement for display.
func newReplacementEntry(edit fix.Replacement, workDir string) ReplacementEntry {
	return ReplacementEntry{
		FilePath: makeRelativePath(edit.FilePath, workDir),
		Offset:   edit.Offset,
		Length:   edit.Length,
		Text:     edit.Text,
	}
}

// buildByFile constructs the ByFile slice from accumulated data.
func (ctx *analysisContext) buildByFile(opts Options) []FileAnalysis {
	result := make([]FileAnalysis, 0, len(ctx.fileMap))
	for _, fa := range ctx.fileMap {
		result = append(result, *fa)
	}
	sortFileAnalysis(result, opts.SortBy, opts.SortDesc)
	return result
}

// Analyze transforms a replacement set and the conflicts rejected while
// building it into a Report.
func Analyze(set *fix.ReplacementSet, conflicts []*fix.ConflictError, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}

	ctx := newAnalysisContext()

	for _, group := range fix.GroupSorted(set) {
		displayPath := makeRelativePath(group.Path, opts.WorkingDir)
		fa := ctx.getOrCreateFileAnalysis(displayPath)

		for _, edit := range group.Edits {
			countReplacement(edit, &report.Totals, fa)
			if opts.IncludeReplacements {
				report.Replacements = append(report.Replacements, newReplacementEntry(edit, opts.WorkingDir))
			}
		}
	}

	for _, conflict := range conflicts {
		report.Totals.Conflicts++
		fa := ctx.getOrCreateFileAnalysis(makeRelativePath(conflict.Incoming.FilePath, opts.WorkingDir))
		fa.Conflicts++
		report.Conflicts = append(report.Conflicts, ConflictEntry{
			Rejected: newReplacementEntry(conflict.Incoming, opts.WorkingDir),
			Existing: newReplacementEntry(conflict.Existing, opts.WorkingDir),
		})
	}

	report.ByFile = ctx.buildByFile(opts)
	report.Totals.Files = len(report.ByFile)

	return report
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortFunc(files, func(left, right FileAnalysis) int {
		switch sortBy {
		case SortByAlpha:
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Path, right.Path)
		case SortByDelta:
			result := cmp.Compare(absInt(right.Delta), absInt(left.Delta))
			if result == 0 {
				result = cmp.Compare(left.Path, right.Path)
			}
			return result
		default: // SortByCount
			result := cmp.Compare(left.Replacements, right.Replacements)
			if desc {
				result = -result
			}
			if result == 0 {
				result = cmp.Compare(left.Path, right.Path)
			}
			return result
		}
	})
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
