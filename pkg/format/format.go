// Package format reformats files after replacements have been applied.
//
// A Registry resolves a style name to a Formatter. The special style "file"
// looks for a style file next to the source or in a parent directory up to
// the repository root, and otherwise infers a style from the file's language.
package format

import (
	"context"
	"errors"

	"github.com/yaklabco/refapply/pkg/fix"
)

// Sentinel errors for categorization via errors.Is.
var (
	// ErrFormat indicates a formatter could not process a file.
	ErrFormat = errors.New("format failed")

	// ErrUnknownStyle indicates a style name with no registered formatter.
	ErrUnknownStyle = errors.New("unknown style")
)

// Built-in style names.
const (
	StyleNone       = "none"
	StyleFile       = "file"
	StyleGofmt      = "gofmt"
	StyleWhitespace = "whitespace"
)

// DefaultStyle is used when a request names no style.
const DefaultStyle = StyleFile

// Request describes one file to format.
type Request struct {
	// Path is the file being formatted. Used for style lookup and language inference.
	Path string

	// Content is the file content after replacements.
	Content []byte

	// Original is the file content before replacements.
	Original []byte

	// Style names the formatting style. Empty means DefaultStyle.
	Style string

	// Changed lists the regions of Content written by replacements.
	// Nil means the whole file.
	Changed []fix.Range
}

// Formatter reformats file content.
type Formatter interface {
	Format(ctx context.Context, req Request) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc func(ctx context.Context, req Request) ([]byte, error)

// Format implements Formatter.
func (f FormatterFunc) Format(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

// None returns content unchanged.
//
//nolint:gochecknoglobals // stateless formatter
var None Formatter = FormatterFunc(func(_ context.Context, req Request) ([]byte, error) {
	return req.Content, nil
})
