package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/refapply/pkg/source"
)

// writeFiles creates files (with content) under dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("setup write: %v", err)
		}
	}
}

func assertFiles(t *testing.T, dir string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("discovered %d files %v, want %d %v", len(got), got, len(want), want)
	}
	for i, name := range want {
		if got[i] != filepath.Join(dir, name) {
			t.Errorf("file %d = %s, want %s", i, got[i], filepath.Join(dir, name))
		}
	}
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"fixes.yaml":         "",
		"build/a.cc.yaml":    "",
		"build/b.cc.yml":     "",
		"src/main.cc":        "",
		"notes.txt":          "",
		".cache/hidden.yaml": "",
		"build/.hidden.yaml": "",
	})

	files, err := source.Discover(context.Background(), source.DiscoverOptions{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	assertFiles(t, dir, files, "build/a.cc.yaml", "build/b.cc.yml", "fixes.yaml")
}

func TestDiscover_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"fixes.yaml": ""})

	files, err := source.Discover(context.Background(), source.DiscoverOptions{
		Paths:      []string{"fixes.yaml", filepath.Join(dir, "fixes.yaml")},
		WorkingDir: dir,
	})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	assertFiles(t, dir, files, "fixes.yaml")
}

func TestDiscover_Globs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"build/a.yaml":               "",
		"build/vendor/b.yaml":        "",
		"third_party/x/y/c.yaml":     "",
		"build/gen/d.yaml":           "",
		"build/gen/e.generated.yaml": "",
	})

	tests := []struct {
		name string
		opts source.DiscoverOptions
		want []string
	}{
		{
			name: "exclude directories",
			opts: source.DiscoverOptions{ExcludeGlobs: []string{"third_party/**", "**/vendor"}},
			want: []string{"build/a.yaml", "build/gen/d.yaml", "build/gen/e.generated.yaml"},
		},
		{
			name: "exclude by base name",
			opts: source.DiscoverOptions{ExcludeGlobs: []string{"*.generated.yaml"}},
			want: []string{"build/a.yaml", "build/gen/d.yaml", "build/vendor/b.yaml", "third_party/x/y/c.yaml"},
		},
		{
			name: "include",
			opts: source.DiscoverOptions{IncludeGlobs: []string{"build/gen/**"}},
			want: []string{"build/gen/d.yaml", "build/gen/e.generated.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := tt.opts
			opts.WorkingDir = dir
			files, err := source.Discover(context.Background(), opts)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			assertFiles(t, dir, files, tt.want...)
		})
	}
}

func TestDiscover_NonExistentPath(t *testing.T) {
	t.Parallel()

	_, err := source.Discover(context.Background(), source.DiscoverOptions{
		Paths:      []string{"missing"},
		WorkingDir: t.TempDir(),
	})
	if err == nil {
		t.Error("Discover() with missing path succeeded")
	}
}

func TestDiscover_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := source.Discover(ctx, source.DiscoverOptions{WorkingDir: t.TempDir()}); err == nil {
		t.Error("Discover() with cancelled context succeeded")
	}
}

func TestDiscover_DirectorySymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	external := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.yaml": ""})
	writeFiles(t, external, map[string]string{"b.yaml": ""})

	if err := os.Symlink(external, filepath.Join(dir, "linked")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := source.Discover(context.Background(), source.DiscoverOptions{WorkingDir: dir})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 file without FollowSymlinks, got %v", files)
	}

	files, err = source.Discover(context.Background(), source.DiscoverOptions{WorkingDir: dir, FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files with FollowSymlinks, got %v", files)
	}
}
