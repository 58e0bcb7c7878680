package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/internal/ui/pretty"
	"github.com/yaklabco/refapply/pkg/analysis"
	"github.com/yaklabco/refapply/pkg/config"
	"github.com/yaklabco/refapply/pkg/fix"
)

type checkFlags struct {
	format       string
	sortBy       string
	ignore       []string
	replacements bool
}

func newCheckCommand() *cobra.Command {
	var cfg config.Config
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Load export files and report conflicts without writing",
		Long: `Load the replacements found in export files, report how many apply to
each target file, and list every conflicting replacement. Only the exports
are read and no file is written.`,
		Example: `  refapply check                        # Check exports under the current directory
  refapply check --sort count fixes/    # Busiest files first
  refapply check --format json --replacements`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Ignore = flags.ignore
			return runCheck(cmd, args, &cfg, flags)
		},
	}

	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of export files to ignore")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByAlpha),
		"order of files: alpha, count, delta")
	cmd.Flags().BoolVar(&flags.replacements, "replacements", false,
		"include every replacement in JSON output")
	withExitCodes(cmd,
		exitCodeDoc{ExitSuccess, "the exports are consistent"},
		exitCodeDoc{ExitFailures, "replacements conflict"},
		exitCodeDoc{ExitAborted, "an export could not be read"},
		exitCodeDoc{ExitInvalidUsage, "invalid flags"},
		exitCodeDoc{ExitConfigError, "invalid configuration"},
	)

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *checkFlags) error {
	logger := logging.Default()
	ctx := logging.WithLogger(commandContext(cmd), logger)

	if flags.format != "text" && flags.format != "json" {
		return &ExitError{
			Code: ExitInvalidUsage,
			Err:  fmt.Errorf("invalid format %q: must be text or json", flags.format),
		}
	}
	sortBy := analysis.SortField(flags.sortBy)
	if !sortBy.IsValid() {
		return &ExitError{
			Code: ExitInvalidUsage,
			Err:  fmt.Errorf("invalid sort %q: must be alpha, count or delta", flags.sortBy),
		}
	}

	cfg, workDir, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	set, err := newLoader(cfg, workDir, args).Load(ctx)
	conflicts := fix.Conflicts(err)
	if err != nil && len(conflicts) == 0 {
		return &ExitError{Code: ExitAborted, Err: fmt.Errorf("load exports: %w", err)}
	}
	if err := set.Validate(); err != nil {
		return &ExitError{Code: ExitAborted, Err: err}
	}

	report := analysis.Analyze(set, conflicts, analysis.Options{
		IncludeReplacements: flags.replacements,
		SortBy:              sortBy,
		SortDesc:            true,
		WorkingDir:          workDir,
	})

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		err = writeCheckJSON(out, report)
	} else {
		colorMode, flagErr := cmd.Flags().GetString("color")
		if flagErr != nil {
			colorMode = "auto"
		}
		styles := pretty.NewStyles(pretty.IsColorEnabled(colorMode, out))
		err = writeCheckText(out, styles, report, conflicts, workDir)
	}
	if err != nil {
		return fmt.Errorf("report results: %w", err)
	}

	if report.Totals.HasConflicts() {
		return &ExitError{Code: ExitFailures, Err: ErrConflictsFound}
	}
	return nil
}

func writeCheckJSON(out io.Writer, report *analysis.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeCheckText lists the edit count per file, then the conflicts.
func writeCheckText(
	out io.Writer,
	styles *pretty.Styles,
	report *analysis.Report,
	conflicts []*fix.ConflictError,
	workDir string,
) error {
	var builder strings.Builder

	for _, file := range report.ByFile {
		if file.Replacements == 0 {
			continue
		}
		builder.WriteString("  ")
		builder.WriteString(styles.FormatFileHeader(file.Path, file.Replacements))
		builder.WriteString("\n")
	}

	if len(conflicts) > 0 {
		builder.WriteString("\n")
		for _, conflict := range conflicts {
			shown := *conflict
			shown.Incoming.FilePath = relativePath(shown.Incoming.FilePath, workDir)
			builder.WriteString(styles.FormatConflict(&shown))
		}
	}

	totals := report.Totals
	if totals.Files > 0 {
		builder.WriteString("\n")
	}
	summary := fmt.Sprintf("%d files, %d replacements, %d conflicts",
		totals.Files, totals.Replacements, totals.Conflicts)
	if totals.HasConflicts() {
		builder.WriteString(styles.Warning.Render(summary))
	} else {
		builder.WriteString(styles.Success.Render(summary))
	}
	builder.WriteString("\n")

	_, err := io.WriteString(out, builder.String())
	return err
}
