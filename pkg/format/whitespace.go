package format

import (
	"bytes"
	"context"
	"slices"

	"github.com/yaklabco/refapply/pkg/fix"
)

// Whitespace trims trailing blanks from changed lines and keeps the final
// newline of the original file.
type Whitespace struct {
	// TrimTrailing removes spaces and tabs at the end of changed lines.
	TrimTrailing bool

	// FinalNewline restores a trailing newline the original had.
	FinalNewline bool
}

// DefaultWhitespace returns a Whitespace formatter with both fixes enabled.
func DefaultWhitespace() Whitespace {
	return Whitespace{TrimTrailing: true, FinalNewline: true}
}

// Format implements Formatter.
func (w Whitespace) Format(_ context.Context, req Request) ([]byte, error) {
	out := req.Content
	if w.TrimTrailing {
		out = trimLines(out, req.Changed)
	}
	if w.FinalNewline && len(out) > 0 && bytes.HasSuffix(req.Original, []byte("\n")) && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(slices.Clip(out), '\n')
	}
	return out, nil
}

// trimLines trims trailing spaces and tabs from every line that intersects
// one of changed, or from all lines when changed is nil.
func trimLines(content []byte, changed []fix.Range) []byte {
	var out bytes.Buffer
	out.Grow(len(content))

	start := 0
	for {
		end := bytes.IndexByte(content[start:], '\n')
		lineEnd := len(content)
		if end >= 0 {
			lineEnd = start + end
		}

		line := content[start:lineEnd]
		if changed == nil || touches(changed, start, lineEnd) {
			line = trimBlank(line)
		}
		out.Write(line)

		if end < 0 {
			break
		}
		out.WriteByte('\n')
		start = lineEnd + 1
		if start == len(content) {
			break
		}
	}
	return out.Bytes()
}

// touches reports whether any range intersects the line [start, end],
// where end is the index of the line's newline. An empty range touches the
// line it sits on.
func touches(ranges []fix.Range, start, end int) bool {
	for _, r := range ranges {
		if r.Start <= end && (r.End > start || r.Start >= start) {
			return true
		}
	}
	return false
}

// trimBlank strips trailing spaces and tabs, keeping a carriage return.
func trimBlank(line []byte) []byte {
	cr := bytes.HasSuffix(line, []byte("\r"))
	if cr {
		line = line[:len(line)-1]
	}
	line = bytes.TrimRight(line, " \t")
	if cr {
		return append(slices.Clip(line), '\r')
	}
	return line
}
