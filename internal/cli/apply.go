package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/config"
	"github.com/yaklabco/refapply/pkg/format"
	"github.com/yaklabco/refapply/pkg/fsutil"
	"github.com/yaklabco/refapply/pkg/reporter"
	"github.com/yaklabco/refapply/pkg/runner"
)

type applyFlags struct {
	format          string
	ignore          []string
	verbose         bool
	compact         bool
	noCheckModified bool
}

func newApplyCommand() *cobra.Command {
	var cfg config.Config
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:     "apply [paths...]",
		Short:   "Apply replacements from export files",
		Long:    applyLongDescription,
		Example: applyExamples,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args, &cfg, flags)
		},
	}

	addApplyFlags(cmd, &cfg, flags)
	withExitCodes(cmd,
		exitCodeDoc{ExitSuccess, "every file was saved or needed no change"},
		exitCodeDoc{ExitFailures, "one or more files could not be saved"},
		exitCodeDoc{ExitAborted, "the run stopped before any file was touched"},
		exitCodeDoc{ExitInvalidUsage, "invalid flags"},
		exitCodeDoc{ExitConfigError, "invalid configuration"},
	)

	return cmd
}

const applyLongDescription = `Apply the replacements found in export files to their target files.

By default, reads every .yaml and .yml export under the current directory.
Specify paths to read specific export files or directories. Relative
FilePath entries resolve against the directory of the export that names them.`

const applyExamples = `  refapply apply                          # Apply exports under the current directory
  refapply apply fixes/                   # Apply exports under fixes/
  refapply apply fixes.yaml               # Apply a single export
  refapply apply --dry-run --format diff  # Show the changes without writing
  refapply apply --style none             # Skip formatting
  refapply apply --fail-on-conflict       # Abort if any replacements conflict`

func runApply(cmd *cobra.Command, args []string, cliCfg *config.Config, flags *applyFlags) error {
	logger := logging.Default()
	ctx := logging.WithLogger(commandContext(cmd), logger)

	// Only set values that were explicitly provided via CLI flags.
	cliCfg.Format = config.OutputFormat(flags.format)
	cliCfg.Ignore = flags.ignore
	if flags.noCheckModified {
		checkModified := false
		cliCfg.CheckModified = &checkModified
	}

	cfg, workDir, err := loadConfig(ctx, cmd, cliCfg)
	if err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logging.FieldStyle, cfg.Style,
		logging.FieldStrict, cfg.Strict,
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldJobs, cfg.Jobs,
	)

	outFormat, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return &ExitError{Code: ExitInvalidUsage, Err: fmt.Errorf("invalid format: %w", err)}
	}

	backups := fsutil.BackupConfig{
		Enabled: cfg.BackupsEnabled(),
		Mode:    fsutil.BackupMode(cfg.Backups.Mode),
	}
	files := fsutil.NewOS(backups)
	saver := runner.New(files, format.NewRegistry(format.WithFiles(files)))

	runOpts := runner.Options{
		Style:          cfg.Style,
		Strict:         cfg.Strict,
		DryRun:         cfg.DryRun,
		Diff:           outFormat == reporter.FormatDiff,
		Jobs:           cfg.Jobs,
		CheckModified:  cfg.ModifiedCheckEnabled(),
		FailOnConflict: cfg.FailOnConflict,
	}

	logger.Debug("starting apply run",
		logging.FieldPaths, args,
		logging.FieldWorkingDir, workDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, code := saver.RunAndSave(ctx, newLoader(cfg, workDir, args), runOpts)

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto"
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      outFormat,
		Color:       colorMode,
		ShowSummary: true,
		Verbose:     flags.verbose,
		Compact:     flags.compact,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	return errorForExitCode(code)
}

func addApplyFlags(cmd *cobra.Command, cfg *config.Config, flags *applyFlags) {
	cmd.Flags().StringVar(&cfg.Style, "style", "",
		"formatting style around changed ranges: file, none, gofmt, whitespace")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "fail a file when formatting it fails")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "report changes without writing files")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVar(&flags.format, "format", "", "output format: text, table, json, diff")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation")
	cmd.Flags().BoolVar(&cfg.FailOnConflict, "fail-on-conflict", false,
		"abort without writing if any replacements conflict")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns of export files to ignore")
	cmd.Flags().BoolVar(&flags.noCheckModified, "no-check-modified", false,
		"overwrite files even if they changed after being read")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list unchanged files too")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
}
