package fix

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff represents a unified diff between original and modified content.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Hunks contains the diff hunks.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk represents a single hunk in a unified diff.
type DiffHunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []DiffLine
}

// DiffLine represents a single line in a diff hunk.
type DiffLine struct {
	Kind    DiffLineKind
	Content string
}

// DiffLineKind indicates the type of diff line.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// contextLines is the number of context lines to show around changes.
const contextLines = 3

// GenerateDiff creates a unified diff between original and modified content.
// Returns nil if there are no changes.
func GenerateDiff(path string, original, modified []byte) *Diff {
	if string(original) == string(modified) {
		return nil
	}

	dmp := diffmatchpatch.New()
	origChars, modChars, lineArray := dmp.DiffLinesToChars(string(original), string(modified))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(origChars, modChars, false), lineArray)

	lines := make([]DiffLine, 0, len(diffs))
	diff := &Diff{Path: path}
	for _, d := range diffs {
		kind := DiffLineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = DiffLineAdd
		case diffmatchpatch.DiffDelete:
			kind = DiffLineRemove
		case diffmatchpatch.DiffEqual:
		}
		for _, line := range splitLines(d.Text) {
			lines = append(lines, DiffLine{Kind: kind, Content: line})
			switch kind {
			case DiffLineAdd:
				diff.Additions++
			case DiffLineRemove:
				diff.Deletions++
			case DiffLineContext:
			}
		}
	}

	diff.Hunks = groupIntoHunks(lines)
	if len(diff.Hunks) == 0 {
		return nil
	}
	return diff
}

// splitLines splits text into lines without their trailing newlines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// groupIntoHunks groups diff lines into hunks with surrounding context.
// Changes separated by no more than twice the context size share a hunk.
func groupIntoHunks(lines []DiffLine) []DiffHunk {
	type position struct{ orig, mod int }

	positions := make([]position, len(lines))
	orig, mod := 1, 1
	for i, line := range lines {
		positions[i] = position{orig, mod}
		switch line.Kind {
		case DiffLineContext:
			orig++
			mod++
		case DiffLineAdd:
			mod++
		case DiffLineRemove:
			orig++
		}
	}

	var hunks []DiffHunk
	for i := 0; i < len(lines); {
		if lines[i].Kind == DiffLineContext {
			i++
			continue
		}

		start := max(i-contextLines, 0)
		end := i
		for j := i; j < len(lines); {
			if lines[j].Kind != DiffLineContext {
				j++
				end = j
				continue
			}
			k := j
			for k < len(lines) && lines[k].Kind == DiffLineContext {
				k++
			}
			if k == len(lines) || k-j > 2*contextLines {
				break
			}
			j = k
		}
		stop := min(end+contextLines, len(lines))

		hunk := DiffHunk{
			OriginalStart: positions[start].orig,
			ModifiedStart: positions[start].mod,
			Lines:         append([]DiffLine(nil), lines[start:stop]...),
		}
		for _, line := range hunk.Lines {
			switch line.Kind {
			case DiffLineContext:
				hunk.OriginalCount++
				hunk.ModifiedCount++
			case DiffLineAdd:
				hunk.ModifiedCount++
			case DiffLineRemove:
				hunk.OriginalCount++
			}
		}
		hunks = append(hunks, hunk)
		i = stop
	}
	return hunks
}

// hunkStart follows the unified diff convention of naming the line before
// an empty range.
func hunkStart(start, count int) int {
	if count == 0 {
		return start - 1
	}
	return start
}

// String returns the diff in unified diff format (without the git header).
func (d *Diff) String() string {
	if d == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n", d.Path)
	fmt.Fprintf(&b, "+++ b/%s\n", d.Path)
	for _, h := range d.Hunks {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n",
			hunkStart(h.OriginalStart, h.OriginalCount), h.OriginalCount,
			hunkStart(h.ModifiedStart, h.ModifiedCount), h.ModifiedCount)
		for _, line := range h.Lines {
			switch line.Kind {
			case DiffLineAdd:
				b.WriteByte('+')
			case DiffLineRemove:
				b.WriteByte('-')
			case DiffLineContext:
				b.WriteByte(' ')
			}
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("diff --git a/%s b/%s", d.Path, d.Path)
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if d == nil {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && (d.Additions > 0 || d.Deletions > 0)
}
