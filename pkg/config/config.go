// Package config defines core configuration types for refapply.
// These types are pure data structures with no dependencies on the loaders that fill them.
package config

// BackupsConfig controls backup behavior when rewriting files.
type BackupsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode"` // "sidecar" or "none"
}

// OutputFormat specifies how a run is reported.
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatDiff  OutputFormat = "diff"
)

// Formats returns the supported output formats.
func Formats() []OutputFormat {
	return []OutputFormat{FormatText, FormatTable, FormatJSON, FormatDiff}
}

// Config is the root configuration structure for refapply.
type Config struct {
	// Style names the formatting style applied around changed ranges.
	// "file" infers it per file; "none" disables formatting.
	Style string `yaml:"style"`

	// Strict turns formatting failures into file failures.
	Strict bool `yaml:"strict"`

	// FailOnConflict aborts the run when any replacement was rejected.
	FailOnConflict bool `yaml:"fail_on_conflict"`

	// CheckModified refuses to overwrite files changed since they were read.
	// Nil means enabled.
	CheckModified *bool `yaml:"check_modified,omitempty"`

	// Extensions lists the file extensions treated as replacement exports.
	Extensions []string `yaml:"extensions,omitempty"`

	// Ignore contains glob patterns for export files to skip.
	Ignore []string `yaml:"ignore"`

	// Backups configures backup behavior when writing.
	Backups BackupsConfig `yaml:"backups"`

	// CLI-level options (not persisted to config files).

	// DryRun reports what would change without writing.
	DryRun bool `yaml:"-"`

	// Format specifies the output format.
	Format OutputFormat `yaml:"-"`

	// Jobs specifies the number of parallel workers.
	Jobs int `yaml:"-"`

	// NoBackups disables backup creation regardless of Backups.
	NoBackups bool `yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Style: "file",
		Backups: BackupsConfig{
			Enabled: false,
			Mode:    "sidecar",
		},
		Format: FormatText,
		Jobs:   0, // 0 means use GOMAXPROCS
	}
}

// ModifiedCheckEnabled reports whether concurrent modification checks are on.
func (c *Config) ModifiedCheckEnabled() bool {
	return c.CheckModified == nil || *c.CheckModified
}

// BackupsEnabled reports whether backups should be written, honoring NoBackups.
func (c *Config) BackupsEnabled() bool {
	return c.Backups.Enabled && !c.NoBackups && c.Backups.Mode != "none"
}
