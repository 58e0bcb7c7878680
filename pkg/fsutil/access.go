package fsutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// FileAccess reads and writes whole files.
// Implementations must be safe for concurrent use on distinct paths.
type FileAccess interface {
	// Read returns the content of path and a snapshot of its state.
	Read(ctx context.Context, path string) ([]byte, *FileInfo, error)

	// Write replaces the content of path. A zero mode keeps the implementation default.
	Write(ctx context.Context, path string, content []byte, mode os.FileMode) error
}

// ModificationChecker is implemented by FileAccess values that can tell
// whether a file changed since it was read.
type ModificationChecker interface {
	CheckModified(ctx context.Context, info *FileInfo) (bool, error)
}

// Backupper is implemented by FileAccess values that can preserve a file's
// current content before it is overwritten.
type Backupper interface {
	// Backup saves the current content of path. It returns true if a backup was created.
	Backup(ctx context.Context, path string) (bool, error)
}

// DirChecker is implemented by FileAccess values that can report whether a
// path is a directory.
type DirChecker interface {
	IsDir(ctx context.Context, path string) bool
}

// OS is the local file system. Writes are atomic; Backup writes a sidecar
// copy when enabled.
type OS struct {
	Backups BackupConfig

	// QuickCheck limits modification detection to mod time and size.
	QuickCheck bool
}

// NewOS returns an OS file access with the given backup behavior.
func NewOS(backup BackupConfig) *OS {
	return &OS{Backups: backup}
}

// Read implements FileAccess.
func (o *OS) Read(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	return ReadFile(ctx, path)
}

// Write implements FileAccess.
func (o *OS) Write(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	return WriteAtomic(ctx, path, content, mode)
}

// Backup implements Backupper.
func (o *OS) Backup(ctx context.Context, path string) (bool, error) {
	return CreateBackup(ctx, path, o.Backups)
}

// IsDir implements DirChecker.
func (o *OS) IsDir(_ context.Context, path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CheckModified implements ModificationChecker.
func (o *OS) CheckModified(ctx context.Context, info *FileInfo) (bool, error) {
	if o.QuickCheck {
		return CheckModifiedQuick(ctx, info)
	}
	return CheckModified(ctx, info)
}

// Memory is an in-memory FileAccess for apply-only runs and tests.
type Memory struct {
	mu         sync.RWMutex
	files      map[string][]byte
	readFails  map[string]error
	writeFails map[string]error
	writes     map[string]int
}

// NewMemory returns a Memory holding a copy of files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{
		files:      make(map[string][]byte, len(files)),
		readFails:  make(map[string]error),
		writeFails: make(map[string]error),
		writes:     make(map[string]int),
	}
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

// Set replaces the content of path.
func (m *Memory) Set(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(content)
}

// Get returns the content of path and whether it exists.
func (m *Memory) Get(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	return string(content), ok
}

// Paths returns the stored paths in sorted order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Writes returns how many times path was written.
func (m *Memory) Writes(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[path]
}

// FailRead makes subsequent reads of path return err.
func (m *Memory) FailRead(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readFails[path] = err
}

// FailWrite makes subsequent writes of path return err.
func (m *Memory) FailWrite(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeFails[path] = err
}

// Read implements FileAccess.
func (m *Memory) Read(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.readFails[path]; err != nil {
		return nil, nil, err
	}
	content, ok := m.files[path]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return bytes.Clone(content), newFileInfo(path, DefaultFileMode, time.Time{}, content), nil
}

// Write implements FileAccess.
func (m *Memory) Write(ctx context.Context, path string, content []byte, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeFails[path]; err != nil {
		return err
	}
	m.files[path] = bytes.Clone(content)
	m.writes[path]++
	return nil
}

// IsDir implements DirChecker. A path is a directory when some stored file
// lies beneath it.
func (m *Memory) IsDir(_ context.Context, path string) bool {
	prefix := filepath.Clean(path) + string(filepath.Separator)

	m.mu.RLock()
	defer m.mu.RUnlock()
	for stored := range m.files {
		if strings.HasPrefix(stored, prefix) {
			return true
		}
	}
	return false
}

// CheckModified implements ModificationChecker by comparing content hashes.
func (m *Memory) CheckModified(_ context.Context, info *FileInfo) (bool, error) {
	if info == nil {
		return false, ErrNilFileInfo
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[info.Path]
	if !ok {
		return true, nil
	}
	return sha256.Sum256(content) != info.Hash, nil
}
