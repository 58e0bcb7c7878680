package format

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/fsutil"
	"github.com/yaklabco/refapply/pkg/langdetect"
)

// Registry maps style names to formatters and implements Formatter by
// dispatching on Request.Style.
type Registry struct {
	mu     sync.RWMutex
	named  map[string]Formatter
	styles *styleCache
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

type registryConfig struct {
	files         fsutil.FileAccess
	styleFileName string
}

// WithFiles reads style files through files instead of the local file system.
// Pass the same FileAccess the runner saves through.
func WithFiles(files fsutil.FileAccess) RegistryOption {
	return func(c *registryConfig) {
		c.files = files
	}
}

// WithStyleFileName looks for style files called name. An empty name
// disables style file lookup.
func WithStyleFileName(name string) RegistryOption {
	return func(c *registryConfig) {
		c.styleFileName = name
	}
}

// NewRegistry returns a Registry with the built-in styles registered. By
// default style files named StyleFileName are read from the local file system.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := registryConfig{styleFileName: StyleFileName}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.files == nil {
		cfg.files = fsutil.NewOS(fsutil.DefaultBackupConfig())
	}

	r := &Registry{
		named:  make(map[string]Formatter),
		styles: newStyleCache(cfg.styleFileName, cfg.files),
	}
	r.named[StyleNone] = None
	r.named[StyleGofmt] = Gofmt{}
	r.named[StyleWhitespace] = DefaultWhitespace()
	return r
}

// Register adds or replaces a named formatter.
func (r *Registry) Register(name string, f Formatter) error {
	if name == "" || name == StyleFile {
		return fmt.Errorf("%w: %q cannot be registered", ErrUnknownStyle, name)
	}
	if f == nil {
		return fmt.Errorf("register %q: nil formatter", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.named[name] = f
	return nil
}

// Styles returns the accepted style names in sorted order.
func (r *Registry) Styles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.named)+1)
	names = append(names, StyleFile)
	for name := range r.named {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether style is accepted by Format.
func (r *Registry) Has(style string) bool {
	if style == "" || style == StyleFile {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.named[style]
	return ok
}

// Format implements Formatter. Every error wraps ErrFormat.
func (r *Registry) Format(ctx context.Context, req Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, req.Path, err)
	}

	f, name, err := r.Resolve(ctx, req.Path, req.Content, req.Style)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, req.Path, err)
	}
	logging.FromContext(ctx).Debug("formatting", logging.FieldPath, req.Path, logging.FieldStyle, name)

	out, err := f.Format(ctx, req)
	if err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, req.Path, err)
	}
	return out, nil
}

// Resolve returns the formatter for style applied to the file at path,
// along with the name of the style it resolved to.
func (r *Registry) Resolve(ctx context.Context, path string, content []byte, style string) (Formatter, string, error) {
	if style == "" {
		style = DefaultStyle
	}
	if style != StyleFile {
		f, err := r.lookup(style)
		return f, style, err
	}

	sc, err := r.styles.find(ctx, filepath.Dir(path))
	if err != nil {
		return nil, "", err
	}
	if sc != nil {
		return r.fromStyleFile(sc)
	}

	if langdetect.Detect(path, content) == langdetect.Go {
		f, err := r.lookup(StyleGofmt)
		return f, StyleGofmt, err
	}
	f, err := r.lookup(StyleWhitespace)
	return f, StyleWhitespace, err
}

func (r *Registry) fromStyleFile(sc *StyleConfig) (Formatter, string, error) {
	switch sc.Style {
	case "", StyleWhitespace:
		return sc.whitespace(), StyleWhitespace, nil
	case StyleFile:
		return nil, "", fmt.Errorf("%w: style file %s cannot select %q", ErrUnknownStyle, sc.Path, StyleFile)
	default:
		f, err := r.lookup(sc.Style)
		if err != nil {
			return nil, "", fmt.Errorf("style file %s: %w", sc.Path, err)
		}
		return f, sc.Style, nil
	}
}

func (r *Registry) lookup(style string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.named[style]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}
	return f, nil
}
