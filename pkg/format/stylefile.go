package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/refapply/pkg/fsutil"
)

// StyleFileName is the style file looked up by the "file" style.
const StyleFileName = ".refapply-style.yml"

// vcsRootMarkers end the style file search at a repository root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// StyleConfig is the parsed content of a style file.
type StyleConfig struct {
	// Style names the formatter to use. Empty means "whitespace".
	Style string `yaml:"style"`

	// TrimTrailingWhitespace configures the whitespace style. Default true.
	TrimTrailingWhitespace *bool `yaml:"trim_trailing_whitespace"`

	// FinalNewline configures the whitespace style. Default true.
	FinalNewline *bool `yaml:"final_newline"`

	// Path is where the style file was found.
	Path string `yaml:"-"`
}

func (s *StyleConfig) whitespace() Whitespace {
	w := DefaultWhitespace()
	if s.TrimTrailingWhitespace != nil {
		w.TrimTrailing = *s.TrimTrailingWhitespace
	}
	if s.FinalNewline != nil {
		w.FinalNewline = *s.FinalNewline
	}
	return w
}

// ParseStyleFile decodes a style file. Unknown keys are rejected.
func ParseStyleFile(path string, data []byte) (*StyleConfig, error) {
	var sc StyleConfig
	if len(data) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse style file %s: %w", path, err)
		}
	}
	sc.Path = path
	return &sc, nil
}

// styleCache memoizes style file lookups per directory.
type styleCache struct {
	name  string
	files fsutil.FileAccess
	home  string

	mu    sync.Mutex
	byDir map[string]*StyleConfig
}

func newStyleCache(name string, files fsutil.FileAccess) *styleCache {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &styleCache{
		name:  name,
		files: files,
		home:  filepath.Clean(home),
		byDir: make(map[string]*StyleConfig),
	}
}

// find returns the nearest style file at or above dir, or nil if none exists.
// The search stops after a VCS root or the home directory.
func (c *styleCache) find(ctx context.Context, dir string) (*StyleConfig, error) {
	if c.name == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(ctx, filepath.Clean(dir))
}

func (c *styleCache) findLocked(ctx context.Context, dir string) (*StyleConfig, error) {
	if sc, ok := c.byDir[dir]; ok {
		return sc, nil
	}

	path := filepath.Join(dir, c.name)
	data, _, err := c.files.Read(ctx, path)
	switch {
	case err == nil:
		sc, err := ParseStyleFile(path, data)
		if err != nil {
			return nil, err
		}
		c.byDir[dir] = sc
		return sc, nil
	case errors.Is(err, fsutil.ErrNotFound):
	default:
		return nil, fmt.Errorf("read style file %s: %w", path, err)
	}

	var sc *StyleConfig
	if parent := filepath.Dir(dir); parent != dir && !c.isBoundary(ctx, dir) {
		sc, err = c.findLocked(ctx, parent)
		if err != nil {
			return nil, err
		}
	}
	c.byDir[dir] = sc
	return sc, nil
}

// isBoundary reports whether the search must not continue above dir.
func (c *styleCache) isBoundary(ctx context.Context, dir string) bool {
	if c.home != "" && c.home != "." && dir == c.home {
		return true
	}
	checker, ok := c.files.(fsutil.DirChecker)
	if !ok {
		return false
	}
	for _, marker := range vcsRootMarkers {
		if checker.IsDir(ctx, filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}
