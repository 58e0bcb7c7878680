package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yaklabco/refapply/pkg/fsutil"
)

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("reads content and snapshot", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "main.c")
		if err := os.WriteFile(path, []byte("int a = 1;"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		content, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(content) != "int a = 1;" {
			t.Errorf("content = %q", content)
		}
		if info.Size != 10 {
			t.Errorf("Size = %d, want 10", info.Size)
		}
		if info.Mode.Perm() != 0600 {
			t.Errorf("Mode = %v, want 0600", info.Mode.Perm())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, fsutil.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fsutil.ReadFile(context.Background(), t.TempDir())
		if !errors.Is(err, fsutil.ErrIsDirectory) {
			t.Errorf("error = %v, want ErrIsDirectory", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := fsutil.ReadFile(ctx, "whatever")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestCheckModified(t *testing.T) {
	t.Parallel()

	t.Run("unchanged file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.c")
		if err := os.WriteFile(path, []byte("same"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}

		changed, err := fsutil.CheckModified(context.Background(), info)
		if err != nil || changed {
			t.Errorf("CheckModified() = %v, %v; want false, nil", changed, err)
		}
	})

	t.Run("rewritten file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.c")
		if err := os.WriteFile(path, []byte("before"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}

		if err := os.WriteFile(path, []byte("after!!"), 0644); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		future := time.Now().Add(time.Hour)
		if err := os.Chtimes(path, future, future); err != nil {
			t.Fatalf("chtimes: %v", err)
		}

		changed, err := fsutil.CheckModified(context.Background(), info)
		if err != nil || !changed {
			t.Errorf("CheckModified() = %v, %v; want true, nil", changed, err)
		}
	})

	t.Run("deleted file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "a.c")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		_, info, err := fsutil.ReadFile(context.Background(), path)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if err := os.Remove(path); err != nil {
			t.Fatalf("remove: %v", err)
		}

		changed, err := fsutil.CheckModifiedQuick(context.Background(), info)
		if err != nil || !changed {
			t.Errorf("CheckModifiedQuick() = %v, %v; want true, nil", changed, err)
		}
	})

	t.Run("nil info", func(t *testing.T) {
		t.Parallel()

		if _, err := fsutil.CheckModified(context.Background(), nil); !errors.Is(err, fsutil.ErrNilFileInfo) {
			t.Errorf("error = %v, want ErrNilFileInfo", err)
		}
	})
}

func TestWriteAtomic(t *testing.T) {
	t.Parallel()

	t.Run("writes and sets mode", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "out.c")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("long count = 1;"), 0600); err != nil {
			t.Fatalf("WriteAtomic() error = %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if string(got) != "long count = 1;" {
			t.Errorf("content = %q", got)
		}
		stat, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if stat.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", stat.Mode().Perm())
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("temp files left behind: %d entries", len(entries))
		}
	})

	t.Run("missing directory leaves nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "out.c")
		if err := fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0); err == nil {
			t.Error("WriteAtomic() into missing directory succeeded")
		}
	})
}
