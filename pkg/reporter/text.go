package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/refapply/internal/ui/pretty"
	"github.com/yaklabco/refapply/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		if r.opts.ShowSummary {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(nil))
		}
		return 0, nil
	}

	for _, conflict := range result.Conflicts {
		shown := *conflict
		shown.Incoming.FilePath = displayPath(shown.Incoming.FilePath, r.opts.WorkingDir)
		fmt.Fprint(r.bw, r.styles.FormatConflict(&shown))
	}

	var total int
	for _, file := range result.Files {
		if changed(file) {
			total++
		}
		if !r.opts.Verbose && !changed(file) && !file.Failed() {
			continue
		}
		file.Path = displayPath(file.Path, r.opts.WorkingDir)
		fmt.Fprint(r.bw, r.styles.FormatOutcome(file))
	}

	if r.opts.ShowSummary {
		if len(result.Files) > 0 || len(result.Conflicts) > 0 {
			fmt.Fprintln(r.bw)
		}
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result))
	}

	return total, nil
}
