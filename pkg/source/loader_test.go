package source_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/source"
)

const tidyExport = `---
MainSourceFile: /src/main.cc
Diagnostics:
  - DiagnosticName: modernize-use-nullptr
    DiagnosticMessage:
      Message: use nullptr
      FilePath: /src/main.cc
      FileOffset: 20
      Replacements:
        - FilePath: /src/main.cc
          Offset: 20
          Length: 1
          ReplacementText: nullptr
    Notes:
      - Message: also here
        FilePath: /src/util.h
        FileOffset: 4
        Replacements:
          - FilePath: /src/util.h
            Offset: 4
            Length: 4
            ReplacementText: 'nullptr'
...
`

func TestParseExport(t *testing.T) {
	t.Parallel()

	t.Run("top-level replacements", func(t *testing.T) {
		t.Parallel()

		doc, err := source.ParseExport("fixes.yaml", []byte(`
MainSourceFile: src/a.cc
Replacements:
  - FilePath: src/a.cc
    Offset: 12
    Length: 3
    ReplacementText: "xyz"
  - Offset: 0
    Length: 0
    ReplacementText: "// header\n"
`))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}

		edits, err := doc.Edits("/build")
		if err != nil {
			t.Fatalf("Edits() error = %v", err)
		}
		want := []fix.Replacement{
			fix.NewReplacement("/build/src/a.cc", 12, 3, "xyz"),
			fix.NewReplacement("/build/src/a.cc", 0, 0, "// header\n"),
		}
		if len(edits) != len(want) {
			t.Fatalf("Edits() = %v, want %v", edits, want)
		}
		for i := range want {
			if edits[i] != want[i] {
				t.Errorf("edit %d = %v, want %v", i, edits[i], want[i])
			}
		}
	})

	t.Run("diagnostics and notes", func(t *testing.T) {
		t.Parallel()

		doc, err := source.ParseExport("tidy.yaml", []byte(tidyExport))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		edits, err := doc.Edits("/elsewhere")
		if err != nil {
			t.Fatalf("Edits() error = %v", err)
		}
		if len(edits) != 2 {
			t.Fatalf("Edits() = %v, want 2 edits", edits)
		}
		if edits[0] != fix.NewReplacement("/src/main.cc", 20, 1, "nullptr") {
			t.Errorf("edit 0 = %v", edits[0])
		}
		if edits[1] != fix.NewReplacement("/src/util.h", 4, 4, "nullptr") {
			t.Errorf("edit 1 = %v", edits[1])
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		doc, err := source.ParseExport("empty.yaml", nil)
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if edits, _ := doc.Edits(""); len(edits) != 0 {
			t.Errorf("Edits() = %v, want none", edits)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		_, err := source.ParseExport("bad.yaml", []byte("Replacements: [1, 2"))
		if !errors.Is(err, source.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})

	t.Run("missing file path", func(t *testing.T) {
		t.Parallel()

		doc, err := source.ParseExport("nopath.yaml", []byte("Replacements:\n  - Offset: 1\n"))
		if err != nil {
			t.Fatalf("ParseExport() error = %v", err)
		}
		if _, err := doc.Edits(""); !errors.Is(err, source.ErrParse) {
			t.Errorf("Edits() error = %v, want ErrParse", err)
		}
	})
}

func TestLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		// Two translation units touching the same header produce an
		// identical replacement, which collapses.
		"build/a.yaml": "MainSourceFile: ../src/a.cc\nReplacements:\n" +
			"  - FilePath: ../src/a.cc\n    Offset: 0\n    Length: 3\n    ReplacementText: long\n" +
			"  - FilePath: ../src/common.h\n    Offset: 8\n    Length: 1\n    ReplacementText: x\n",
		"build/b.yaml": "MainSourceFile: ../src/b.cc\nReplacements:\n" +
			"  - FilePath: ../src/common.h\n    Offset: 8\n    Length: 1\n    ReplacementText: x\n" +
			"  - FilePath: ../src/common.h\n    Offset: 7\n    Length: 3\n    ReplacementText: yyy\n" +
			"  - FilePath: ../src/b.cc\n    Offset: 4\n    Length: 0\n    ReplacementText: ' '\n",
	})

	loader := source.NewLoader(source.DiscoverOptions{WorkingDir: dir})
	loader.Jobs = 2
	set, err := loader.Load(context.Background())

	conflicts := fix.Conflicts(err)
	if len(conflicts) != 1 {
		t.Fatalf("Load() error = %v, want exactly one conflict", err)
	}
	common := filepath.Join(dir, "src", "common.h")
	if conflicts[0].Existing != fix.NewReplacement(common, 8, 1, "x") {
		t.Errorf("conflict kept %v, want the edit from a.yaml", conflicts[0].Existing)
	}

	if set.Len() != 3 {
		t.Errorf("Len() = %d, want 3: %v", set.Len(), set.All())
	}
	wantFiles := []string{
		filepath.Join(dir, "src", "a.cc"),
		filepath.Join(dir, "src", "b.cc"),
		common,
	}
	files := set.Files()
	if len(files) != len(wantFiles) {
		t.Fatalf("Files() = %v, want %v", files, wantFiles)
	}
	for i := range wantFiles {
		if files[i] != wantFiles[i] {
			t.Errorf("Files()[%d] = %s, want %s", i, files[i], wantFiles[i])
		}
	}
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no exports", func(t *testing.T) {
		t.Parallel()

		loader := source.NewLoader(source.DiscoverOptions{WorkingDir: t.TempDir()})
		if _, err := loader.Load(context.Background()); !errors.Is(err, source.ErrNoExports) {
			t.Errorf("error = %v, want ErrNoExports", err)
		}

		loader.AllowEmpty = true
		set, err := loader.Load(context.Background())
		if err != nil || set.Len() != 0 {
			t.Errorf("AllowEmpty: Load() = %d edits, %v", set.Len(), err)
		}
	})

	t.Run("parse error aborts", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"good.yaml": "Replacements:\n  - FilePath: a.c\n    Offset: 0\n    Length: 1\n    ReplacementText: b\n",
			"bad.yaml":  "Replacements: {",
		})

		_, err := source.NewLoader(source.DiscoverOptions{WorkingDir: dir}).Load(context.Background())
		if !errors.Is(err, source.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})

	t.Run("invalid replacement aborts", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"neg.yaml": "Replacements:\n  - FilePath: a.c\n    Offset: -1\n    Length: 1\n    ReplacementText: b\n",
		})

		_, err := source.NewLoader(source.DiscoverOptions{WorkingDir: dir}).Load(context.Background())
		if !errors.Is(err, fix.ErrInvalidEdit) {
			t.Errorf("error = %v, want ErrInvalidEdit", err)
		}
		if len(fix.Conflicts(err)) != 0 {
			t.Error("invalid edit reported as conflict")
		}
	})
}
