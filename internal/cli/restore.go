package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/config"
	"github.com/yaklabco/refapply/pkg/fsutil"
)

// ErrNoBackup is returned when a file to restore has no backup.
var ErrNoBackup = errors.New("no backup found")

func newRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <files...>",
		Short: "Restore files from the backups written by apply",
		Long: `Copy the backup of each named file back over it. Backups are written by
apply when backups are enabled in the configuration.`,
		Example: "  refapply restore src/a.cc src/b.cc",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runRestore,
	}
	withExitCodes(cmd,
		exitCodeDoc{ExitSuccess, "every file was restored"},
		exitCodeDoc{ExitFailures, "a file had no backup or could not be restored"},
		exitCodeDoc{ExitConfigError, "invalid configuration"},
	)

	return cmd
}

func runRestore(cmd *cobra.Command, args []string) error {
	logger := logging.NewInteractive()
	ctx := logging.WithLogger(commandContext(cmd), logger)

	cfg, workDir, err := loadConfig(ctx, cmd, &config.Config{})
	if err != nil {
		return err
	}
	mode := fsutil.BackupMode(cfg.Backups.Mode)

	var errs []error
	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		restored, err := fsutil.RestoreBackup(ctx, path, mode)
		switch {
		case err != nil:
			logger.Error("restore failed", logging.FieldPath, arg, logging.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", arg, err))
		case !restored:
			logger.Warn("no backup found", logging.FieldPath, arg)
			errs = append(errs, fmt.Errorf("%s: %w", arg, ErrNoBackup))
		default:
			logger.Info("restored", logging.FieldPath, arg)
		}
	}

	if len(errs) > 0 {
		return &ExitError{Code: ExitFailures, Err: errors.Join(errs...)}
	}
	return nil
}
