package format

import (
	"context"
	"fmt"
	goformat "go/format"
)

// Gofmt formats Go source the way gofmt does. The whole file is formatted
// regardless of the changed regions.
type Gofmt struct{}

// Format implements Formatter.
func (Gofmt) Format(_ context.Context, req Request) ([]byte, error) {
	out, err := goformat.Source(req.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: gofmt %s: %w", ErrFormat, req.Path, err)
	}
	return out, nil
}
