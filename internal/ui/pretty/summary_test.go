package pretty_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/refapply/internal/ui/pretty"
	"github.com/yaklabco/refapply/pkg/runner"
)

func TestFormatSummaryOneLine(t *testing.T) {
	styles := pretty.NewStyles(false)

	tests := []struct {
		name   string
		result *runner.Result
		want   string
	}{
		{
			name:   "nil result",
			result: nil,
			want:   "Nothing to do\n",
		},
		{
			name:   "aborted",
			result: &runner.Result{Aborted: errors.New("tool failed")},
			want:   "Aborted before any file was touched: tool failed\n",
		},
		{
			name:   "empty set",
			result: &runner.Result{},
			want:   "No replacements to apply\n",
		},
		{
			name: "written with failure and conflict",
			result: &runner.Result{Stats: runner.Stats{
				FilesTotal:   3,
				FilesWritten: 2,
				FilesFailed:  1,
				EditsApplied: 5,
				Conflicts:    1,
			}},
			want: "2 files written, 1 failed (5 edits, 1 conflict)\n",
		},
		{
			name: "dry run",
			result: &runner.Result{Stats: runner.Stats{
				FilesTotal:     2,
				FilesPending:   1,
				FilesUnchanged: 1,
				EditsApplied:   1,
			}},
			want: "1 file would change, 1 unchanged (1 edit)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.result))
		})
	}
}

func TestFormatSummary_AllSucceeded(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(&runner.Result{Stats: runner.Stats{
		Replacements: 4,
		EditsApplied: 4,
		FilesTotal:   2,
		FilesWritten: 2,
	}})

	assert.Contains(t, result, "Summary")
	assert.Contains(t, result, "Replacements:")
	assert.Contains(t, result, "Written:")
	assert.Contains(t, result, "All files succeeded")
	assert.NotContains(t, result, "Failed:")
	assert.NotContains(t, result, "Conflicts:")
}

func TestFormatSummary_WithFailures(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(&runner.Result{Stats: runner.Stats{
		Conflicts:   2,
		FilesTotal:  2,
		FilesFailed: 2,
	}})

	assert.Contains(t, result, "Conflicts:")
	assert.Contains(t, result, "Failed:")
	assert.Contains(t, result, "Completed with 2 file failures")
}

func TestFormatSummary_Aborted(t *testing.T) {
	styles := pretty.NewStyles(false)

	result := styles.FormatSummary(&runner.Result{Aborted: runner.ErrAborted})
	assert.Contains(t, result, "Aborted before any file was touched")
}
