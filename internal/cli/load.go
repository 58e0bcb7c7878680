package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/refapply/internal/configloader"
	"github.com/yaklabco/refapply/internal/logging"
	"github.com/yaklabco/refapply/pkg/config"
	"github.com/yaklabco/refapply/pkg/source"
)

// commandContext returns the command context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

// loadConfig resolves the layered configuration with cliCfg on top.
// It returns the final configuration and the working directory.
func loadConfig(ctx context.Context, cmd *cobra.Command, cliCfg *config.Config) (*config.Config, string, error) {
	logger := logging.FromContext(ctx)

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, "", fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, "", &ExitError{
			Code: ExitConfigError,
			Err:  errors.Join(errors.New("failed to load configuration"), err),
		}
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loadResult.LoadedFrom)
	}

	return loadResult.Config, workDir, nil
}

// newLoader builds the export loader for paths under cfg.
func newLoader(cfg *config.Config, workDir string, paths []string) *source.Loader {
	extensions := cfg.Extensions
	if len(extensions) == 0 {
		extensions = source.DefaultExtensions()
	}

	loader := source.NewLoader(source.DiscoverOptions{
		Paths:        paths,
		WorkingDir:   workDir,
		Extensions:   extensions,
		ExcludeGlobs: cfg.Ignore,
	})
	loader.Jobs = cfg.Jobs
	return loader
}

// relativePath returns path relative to workDir when it lies beneath it.
func relativePath(path, workDir string) string {
	if workDir == "" {
		return path
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
