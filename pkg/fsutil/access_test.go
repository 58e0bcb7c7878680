package fsutil_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yaklabco/refapply/pkg/fsutil"
)

var (
	_ fsutil.FileAccess          = (*fsutil.OS)(nil)
	_ fsutil.Backupper           = (*fsutil.OS)(nil)
	_ fsutil.ModificationChecker = (*fsutil.OS)(nil)
	_ fsutil.DirChecker          = (*fsutil.OS)(nil)
	_ fsutil.FileAccess          = (*fsutil.Memory)(nil)
	_ fsutil.ModificationChecker = (*fsutil.Memory)(nil)
	_ fsutil.DirChecker          = (*fsutil.Memory)(nil)
)

func TestNewOS_KeepsBackupConfig(t *testing.T) {
	t.Parallel()

	cfg := fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar}
	files := fsutil.NewOS(cfg)
	if files.Backups != cfg {
		t.Errorf("Backups = %+v, want %+v", files.Backups, cfg)
	}

	var access fsutil.FileAccess = files
	if _, ok := access.(fsutil.Backupper); !ok {
		t.Error("OS does not implement Backupper")
	}
}

func TestIsDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.c"), nil, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	files := fsutil.NewOS(fsutil.DefaultBackupConfig())
	mem := fsutil.NewMemory(map[string]string{
		filepath.Join(root, ".git", "HEAD"): "ref: main",
		filepath.Join(root, "a.c"):          "int a;",
	})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "directory", path: filepath.Join(root, ".git"), want: true},
		{name: "regular file", path: filepath.Join(root, "a.c"), want: false},
		{name: "missing", path: filepath.Join(root, ".hg"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := files.IsDir(ctx, tt.path); got != tt.want {
				t.Errorf("OS.IsDir(%s) = %v, want %v", tt.path, got, tt.want)
			}
			if got := mem.IsDir(ctx, tt.path); got != tt.want {
				t.Errorf("Memory.IsDir(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestOS_WriteWithBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a.c")
	if err := os.WriteFile(path, []byte("int a = 1;"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	files := fsutil.NewOS(fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar})

	content, info, err := files.Read(ctx, path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(content) != "int a = 1;" {
		t.Errorf("Read() = %q", content)
	}

	created, err := files.Backup(ctx, path)
	if err != nil || !created {
		t.Fatalf("Backup() = %v, %v; want true, nil", created, err)
	}
	if err := files.Write(ctx, path, []byte("long count = 1;"), info.Mode); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	backup, err := os.ReadFile(path + fsutil.BackupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "int a = 1;" {
		t.Errorf("backup = %q", backup)
	}

	// A second backup keeps the first one.
	created, err = files.Backup(ctx, path)
	if err != nil || created {
		t.Errorf("second Backup() = %v, %v; want false, nil", created, err)
	}
	if err := files.Write(ctx, path, []byte("again"), info.Mode); err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	backup, _ = os.ReadFile(path + fsutil.BackupSuffix)
	if string(backup) != "int a = 1;" {
		t.Errorf("backup overwritten: %q", backup)
	}

	restored, err := fsutil.RestoreBackup(ctx, path, fsutil.BackupModeSidecar)
	if err != nil || !restored {
		t.Fatalf("RestoreBackup() = %v, %v", restored, err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "int a = 1;" {
		t.Errorf("restored content = %q", got)
	}
}

func TestOS_WriteWithoutBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "a.c")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	files := fsutil.NewOS(fsutil.DefaultBackupConfig())
	if created, err := files.Backup(ctx, path); err != nil || created {
		t.Errorf("Backup() = %v, %v; want false, nil", created, err)
	}
	if err := files.Write(ctx, path, []byte("y"), 0); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := os.Stat(path + fsutil.BackupSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("backup created with backups disabled: %v", err)
	}

	restored, err := fsutil.RestoreBackup(ctx, path, fsutil.BackupModeSidecar)
	if err != nil || restored {
		t.Errorf("RestoreBackup() without backup = %v, %v; want false, nil", restored, err)
	}
}

func TestBackupPath(t *testing.T) {
	t.Parallel()

	if got := fsutil.BackupPath("a.c", fsutil.BackupModeSidecar); got != "a.c.refapply.bak" {
		t.Errorf("sidecar = %q", got)
	}
	if got := fsutil.BackupPath("a.c", fsutil.BackupModeNone); got != "" {
		t.Errorf("none = %q", got)
	}
	if got := fsutil.BackupPath("a.c", "unknown"); got != "a.c.refapply.bak" {
		t.Errorf("unknown = %q", got)
	}
}

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := fsutil.NewMemory(map[string]string{"a.c": "int a;"})

	content, info, err := mem.Read(ctx, "a.c")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(content) != "int a;" {
		t.Errorf("Read() = %q", content)
	}

	changed, err := mem.CheckModified(ctx, info)
	if err != nil || changed {
		t.Errorf("CheckModified() = %v, %v; want false, nil", changed, err)
	}

	if err := mem.Write(ctx, "a.c", []byte("long a;"), 0); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got, _ := mem.Get("a.c"); got != "long a;" {
		t.Errorf("Get() = %q", got)
	}
	if mem.Writes("a.c") != 1 {
		t.Errorf("Writes() = %d, want 1", mem.Writes("a.c"))
	}

	changed, _ = mem.CheckModified(ctx, info)
	if !changed {
		t.Error("CheckModified() after write = false, want true")
	}

	if _, _, err := mem.Read(ctx, "missing.c"); !errors.Is(err, fsutil.ErrNotFound) {
		t.Errorf("Read(missing) error = %v, want ErrNotFound", err)
	}

	boom := errors.New("boom")
	mem.FailRead("a.c", boom)
	if _, _, err := mem.Read(ctx, "a.c"); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want boom", err)
	}
	mem.FailWrite("b.c", boom)
	if err := mem.Write(ctx, "b.c", nil, 0); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want boom", err)
	}

	mem.Set("c.c", "")
	paths := mem.Paths()
	if len(paths) != 2 || paths[0] != "a.c" || paths[1] != "c.c" {
		t.Errorf("Paths() = %v", paths)
	}
}
