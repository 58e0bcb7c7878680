package runner

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/yaklabco/refapply/pkg/fsutil"
)

// Buffers holds in-memory file contents for apply-only runs.
// A file is loaded from the underlying FileAccess the first time it is
// touched; later reads and updates only affect the buffer.
type Buffers struct {
	files fsutil.FileAccess

	mu       sync.Mutex
	contents map[string][]byte
}

// NewBuffers returns Buffers that load files from files.
// A nil files means only contents added with Set are available.
func NewBuffers(files fsutil.FileAccess) *Buffers {
	return &Buffers{
		files:    files,
		contents: make(map[string][]byte),
	}
}

// Load returns the buffered content of path, reading it on first touch.
func (b *Buffers) Load(ctx context.Context, path string) ([]byte, error) {
	b.mu.Lock()
	content, ok := b.contents[path]
	b.mu.Unlock()
	if ok {
		return bytes.Clone(content), nil
	}

	if b.files == nil {
		return nil, fmt.Errorf("%w: %s", fsutil.ErrNotFound, path)
	}
	content, _, err := b.files.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Another worker may have loaded it meanwhile; keep the first copy.
	if existing, ok := b.contents[path]; ok {
		return bytes.Clone(existing), nil
	}
	b.contents[path] = content
	return bytes.Clone(content), nil
}

// Set replaces the buffered content of path.
func (b *Buffers) Set(path string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents[path] = bytes.Clone(content)
}

// Content returns the buffered content of path and whether it is loaded.
func (b *Buffers) Content(path string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.contents[path]
	return bytes.Clone(content), ok
}

// Paths returns the buffered paths in sorted order.
func (b *Buffers) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := make([]string, 0, len(b.contents))
	for path := range b.contents {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
