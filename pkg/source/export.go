package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/refapply/pkg/fix"
)

// ErrParse indicates an export file is not a valid replacement document.
var ErrParse = errors.New("invalid replacement export")

// Export is one replacement export document.
type Export struct {
	// MainSourceFile is the translation unit the tool ran on. Informational.
	MainSourceFile string `yaml:"MainSourceFile"`

	// Replacements are top-level replacements.
	Replacements []ExportReplacement `yaml:"Replacements"`

	// Diagnostics carry replacements attached to individual findings.
	Diagnostics []ExportDiagnostic `yaml:"Diagnostics"`
}

// ExportReplacement is one replacement as written in an export.
type ExportReplacement struct {
	FilePath        string `yaml:"FilePath"`
	Offset          int    `yaml:"Offset"`
	Length          int    `yaml:"Length"`
	ReplacementText string `yaml:"ReplacementText"`
}

// ExportDiagnostic is a finding with attached fixes.
type ExportDiagnostic struct {
	DiagnosticName    string          `yaml:"DiagnosticName"`
	DiagnosticMessage ExportMessage   `yaml:"DiagnosticMessage"`
	Notes             []ExportMessage `yaml:"Notes"`
}

// ExportMessage is a diagnostic message or note.
type ExportMessage struct {
	Message      string              `yaml:"Message"`
	FilePath     string              `yaml:"FilePath"`
	FileOffset   int                 `yaml:"FileOffset"`
	Replacements []ExportReplacement `yaml:"Replacements"`
}

// ParseExport decodes an export document read from path.
// An empty document yields an empty Export.
func ParseExport(path string, data []byte) (*Export, error) {
	var doc Export
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}
	return &doc, nil
}

// Edits returns every replacement in the document in document order.
// Relative file paths are resolved against baseDir; an empty FilePath falls
// back to MainSourceFile.
func (e *Export) Edits(baseDir string) ([]fix.Replacement, error) {
	var edits []fix.Replacement
	add := func(rs []ExportReplacement) error {
		for _, r := range rs {
			path := r.FilePath
			if path == "" {
				path = e.MainSourceFile
			}
			if path == "" {
				return fmt.Errorf("%w: replacement at offset %d has no file path", ErrParse, r.Offset)
			}
			if !filepath.IsAbs(path) && baseDir != "" {
				path = filepath.Join(baseDir, path)
			}
			edits = append(edits, fix.NewReplacement(filepath.Clean(path), r.Offset, r.Length, r.ReplacementText))
		}
		return nil
	}

	if err := add(e.Replacements); err != nil {
		return nil, err
	}
	for _, d := range e.Diagnostics {
		if err := add(d.DiagnosticMessage.Replacements); err != nil {
			return nil, err
		}
		for _, n := range d.Notes {
			if err := add(n.Replacements); err != nil {
				return nil, err
			}
		}
	}
	return edits, nil
}
