package reporter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/refapply/pkg/fix"
	"github.com/yaklabco/refapply/pkg/reporter"
	"github.com/yaklabco/refapply/pkg/runner"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    reporter.Format
		wantErr bool
	}{
		{name: "empty defaults to text", input: "", want: reporter.FormatText},
		{name: "text", input: "text", want: reporter.FormatText},
		{name: "table", input: "table", want: reporter.FormatTable},
		{name: "json", input: "json", want: reporter.FormatJSON},
		{name: "diff", input: "diff", want: reporter.FormatDiff},
		{name: "unknown format", input: "sarif", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reporter.ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		format  reporter.Format
		wantErr bool
	}{
		{name: "text reporter", format: reporter.FormatText},
		{name: "table reporter", format: reporter.FormatTable},
		{name: "json reporter", format: reporter.FormatJSON},
		{name: "diff reporter", format: reporter.FormatDiff},
		{name: "empty defaults to text", format: ""},
		{name: "unknown format", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := reporter.DefaultOptions()
			opts.Format = tt.format
			opts.Writer = &bytes.Buffer{}

			rep, err := reporter.New(opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rep)
		})
	}
}

func newOptions(format reporter.Format, buf *bytes.Buffer) reporter.Options {
	opts := reporter.DefaultOptions()
	opts.Format = format
	opts.Writer = buf
	opts.Color = "never"
	return opts
}

func report(t *testing.T, opts reporter.Options, result *runner.Result) int {
	t.Helper()
	rep, err := reporter.New(opts)
	require.NoError(t, err)
	n, err := rep.Report(context.Background(), result)
	require.NoError(t, err)
	return n
}

func TestTextReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatText, &buf), nil)

	assert.Equal(t, 0, n)
	assert.Equal(t, "Nothing to do\n", buf.String())
}

func TestTextReporter_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatText, &buf), createTestResult())

	out := buf.String()
	assert.Equal(t, 1, n)
	assert.Contains(t, out, "  src/a.c  written  2 edits\n")
	assert.Contains(t, out, "  src/b.c  failed  write failed\n")
	assert.NotContains(t, out, "src/c.c", "unchanged files are hidden unless verbose")
	assert.Contains(t, out, "src/a.c:4  conflict")
	assert.Contains(t, out, "1 file written, 1 unchanged, 1 failed (2 edits, 1 conflict)")
}

func TestTextReporter_VerboseAndRelative(t *testing.T) {
	var buf bytes.Buffer
	opts := newOptions(reporter.FormatText, &buf)
	opts.Verbose = true
	opts.ShowSummary = false
	opts.WorkingDir = "/work"

	result := &runner.Result{Files: []runner.FileOutcome{
		{Path: "/work/src/c.c", Status: runner.StatusUnchanged},
		{Path: "/elsewhere/d.c", Status: runner.StatusUnchanged},
	}}
	report(t, opts, result)

	assert.Equal(t, "  src/c.c  unchanged\n  /elsewhere/d.c  unchanged\n", buf.String())
}

func TestJSONReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	report(t, newOptions(reporter.FormatJSON, &buf), nil)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "1.0.0", output.Version)
	assert.Empty(t, output.Files)
	assert.Equal(t, runner.ExitAborted, output.Summary.ExitCode)
}

func TestJSONReporter_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatJSON, &buf), createTestResult())
	assert.Equal(t, 1, n)

	var output reporter.JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))

	require.Len(t, output.Files, 3)
	assert.Equal(t, "written", output.Files[0].Status)
	assert.Equal(t, 2, output.Files[0].EditsApplied)
	assert.Contains(t, output.Files[0].Diff, "+long a;")
	assert.Equal(t, "write failed", output.Files[1].Error)

	require.Len(t, output.Conflicts, 1)
	assert.Equal(t, "xyz", output.Conflicts[0].Rejected.ReplacementText)
	assert.Equal(t, 0, output.Conflicts[0].Existing.Offset)

	assert.Equal(t, 1, output.Summary.FilesFailed)
	assert.False(t, output.Summary.Success)
	assert.Equal(t, runner.ExitFailures, output.Summary.ExitCode)
}

func TestJSONReporter_Compact(t *testing.T) {
	var buf bytes.Buffer
	opts := newOptions(reporter.FormatJSON, &buf)
	opts.Compact = true
	report(t, opts, &runner.Result{Aborted: errors.New("tool failed")})

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"), "compact output is a single line")
	assert.Contains(t, out, `"aborted":"tool failed"`)
}

func TestDiffReporter_NilResult(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatDiff, &buf), nil)
	assert.Equal(t, 0, n)
	assert.Empty(t, buf.String())
}

func TestDiffReporter_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatDiff, &buf), createTestResult())
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "diff --git a/src/a.c b/src/a.c\n--- a/src/a.c\n+++ b/src/a.c\n")
	assert.Contains(t, out, "-int a;\n+long a;\n")
	assert.Contains(t, out, "src/b.c: error: write failed\n")
	assert.Contains(t, out, "1 file changed, 1 insertion(+), 1 deletion(-)\n")
}

func TestTableReporter_Outcomes(t *testing.T) {
	var buf bytes.Buffer
	n := report(t, newOptions(reporter.FormatTable, &buf), createTestResult())
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "src/c.c")
	assert.Contains(t, out, "conflict")
	assert.Contains(t, out, " 3 files | 1 written | 1 failed | 1 conflict\n")
}

func TestDefaultOptions(t *testing.T) {
	opts := reporter.DefaultOptions()
	assert.Equal(t, reporter.FormatText, opts.Format)
	assert.Equal(t, "auto", opts.Color)
	assert.True(t, opts.ShowSummary)
	assert.NotNil(t, opts.Writer)
	assert.NotNil(t, opts.ErrorWriter)
}

func createTestResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path:         "src/a.c",
				Status:       runner.StatusWritten,
				EditsApplied: 2,
				Written:      true,
				Diff:         fix.GenerateDiff("src/a.c", []byte("int a;\n"), []byte("long a;\n")),
			},
			{
				Path:   "src/b.c",
				Status: runner.StatusFailed,
				Error:  errors.New("write failed"),
			},
			{
				Path:   "src/c.c",
				Status: runner.StatusUnchanged,
			},
		},
		Stats: runner.Stats{
			Replacements:   4,
			Conflicts:      1,
			FilesTotal:     3,
			FilesWritten:   1,
			FilesUnchanged: 1,
			FilesFailed:    1,
			EditsApplied:   2,
		},
		Conflicts: []*fix.ConflictError{{
			Existing: fix.NewReplacement("src/a.c", 0, 3, "long"),
			Incoming: fix.NewReplacement("src/a.c", 4, 1, "xyz"),
		}},
	}
}
