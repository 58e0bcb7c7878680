package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a commented configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON(NewConfig())
	}

	var buf bytes.Buffer
	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Formatting style around changed ranges: file, none, gofmt, whitespace
style: file

# Fail a file when its formatting step fails
strict: false

# Abort the run when replacements conflict
fail_on_conflict: false

# Refuse to overwrite files modified since they were read
# check_modified: true

# Replacement export file extensions
# extensions:
#   - .yaml
#   - .yml

# Export file patterns to ignore (doublestar globs)
# ignore:
#   - "build/**"

# Keep a copy of each file before it is rewritten
backups:
  enabled: false
  mode: sidecar
`)

	return buf.Bytes(), nil
}

// templateToJSON renders the persisted defaults as JSON.
func templateToJSON(cfg *Config) ([]byte, error) {
	doc := map[string]any{
		"style":            cfg.Style,
		"strict":           cfg.Strict,
		"fail_on_conflict": cfg.FailOnConflict,
		"ignore":           []string{},
		"backups": map[string]any{
			"enabled": cfg.Backups.Enabled,
			"mode":    cfg.Backups.Mode,
		},
	}

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# refapply configuration
# See: https://github.com/yaklabco/refapply`
}
