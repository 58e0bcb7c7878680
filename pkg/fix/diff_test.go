package fix_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/yaklabco/refapply/pkg/fix"
)

func TestGenerateDiff(t *testing.T) {
	t.Parallel()

	t.Run("returns nil for identical content", func(t *testing.T) {
		t.Parallel()

		content := []byte("hello\nworld\n")
		if diff := fix.GenerateDiff("test.c", content, content); diff != nil {
			t.Error("expected nil for identical content")
		}
		if diff := fix.GenerateDiff("test.c", nil, []byte{}); diff != nil {
			t.Error("expected nil for empty inputs")
		}
	})

	t.Run("detects single line change", func(t *testing.T) {
		t.Parallel()

		diff := fix.GenerateDiff("test.c", []byte("hello\nworld\n"), []byte("hello\nearth\n"))
		if diff == nil {
			t.Fatal("expected non-nil diff")
		}
		if !diff.HasChanges() {
			t.Error("expected HasChanges() = true")
		}
		if len(diff.Hunks) != 1 {
			t.Fatalf("expected 1 hunk, got %d", len(diff.Hunks))
		}
		if diff.Additions != 1 || diff.Deletions != 1 {
			t.Errorf("additions=%d deletions=%d, want 1 and 1", diff.Additions, diff.Deletions)
		}

		out := diff.String()
		for _, want := range []string{"--- a/test.c", "+++ b/test.c", "@@ -1,2 +1,2 @@", "-world", "+earth", " hello"} {
			if !strings.Contains(out, want) {
				t.Errorf("diff output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("separates distant changes into hunks", func(t *testing.T) {
		t.Parallel()

		var orig, mod strings.Builder
		for i := range 30 {
			line := fmt.Sprintf("line%d\n", i)
			orig.WriteString(line)
			switch i {
			case 1:
				mod.WriteString("changed-first\n")
			case 28:
				mod.WriteString("changed-last\n")
			default:
				mod.WriteString(line)
			}
		}

		diff := fix.GenerateDiff("test.c", []byte(orig.String()), []byte(mod.String()))
		if diff == nil {
			t.Fatal("expected non-nil diff")
		}
		if len(diff.Hunks) != 2 {
			t.Fatalf("expected 2 hunks, got %d", len(diff.Hunks))
		}
		if diff.Hunks[0].OriginalStart != 1 {
			t.Errorf("first hunk OriginalStart = %d, want 1", diff.Hunks[0].OriginalStart)
		}
		if diff.Hunks[1].OriginalStart != 26 {
			t.Errorf("second hunk OriginalStart = %d, want 26", diff.Hunks[1].OriginalStart)
		}
	})

	t.Run("addition to empty file", func(t *testing.T) {
		t.Parallel()

		diff := fix.GenerateDiff("new.c", nil, []byte("a\nb\n"))
		if diff == nil {
			t.Fatal("expected non-nil diff")
		}
		if !strings.Contains(diff.String(), "@@ -0,0 +1,2 @@") {
			t.Errorf("unexpected hunk header:\n%s", diff.String())
		}
		if !strings.HasPrefix(diff.FullString(), "diff --git a/new.c b/new.c\n") {
			t.Errorf("FullString() missing git header:\n%s", diff.FullString())
		}
	})
}

func TestDiff_NilSafe(t *testing.T) {
	t.Parallel()

	var diff *fix.Diff
	if diff.HasChanges() || diff.String() != "" || diff.FullString() != "" || diff.GitHeader() != "" {
		t.Error("nil Diff methods should return zero values")
	}
}
