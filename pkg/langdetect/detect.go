// Package langdetect identifies the language of a source file so the
// formatter can pick a default style for it.
package langdetect

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect for the languages with special handling.
const (
	Go     = "go"
	Python = "python"
	Rust   = "rust"
	Bash   = "bash"
	C      = "c"
	Cpp    = "c++"
	Text   = "text"
)

// candidates limits the classifier to languages that refactoring tools
// commonly rewrite.
//
//nolint:gochecknoglobals // read-only lookup table
var candidates = []string{
	"Go", "C", "C++", "Objective-C", "Java", "Python", "Rust",
	"JavaScript", "TypeScript", "Shell", "Ruby",
}

// Detect returns the lower-case language of the file at path with the
// given content. Returns "text" if detection fails or confidence is low.
func Detect(path string, content []byte) string {
	base := filepath.Base(path)

	// Strategy 1: well-known file names and unambiguous extensions.
	if path != "" {
		if lang, safe := enry.GetLanguageByFilename(base); safe {
			return normalize(lang)
		}
		if lang, safe := enry.GetLanguageByExtension(base); safe {
			return normalize(lang)
		}
	}

	if len(content) == 0 {
		return Text
	}

	// Strategy 2: shebang.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	// Strategy 3: strongly indicative patterns.
	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	// Strategy 4: classifier, narrowed to the extension's languages when
	// the extension was ambiguous.
	pool := candidates
	if exts := enry.GetLanguagesByExtension(base, content, nil); len(exts) > 1 {
		pool = exts
	}
	if lang, safe := enry.GetLanguageByClassifier(content, pool); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

// detectByPattern checks for language-specific patterns that are highly indicative.
func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	text := string(content)

	switch {
	case bytes.HasPrefix(trimmed, []byte("package ")):
		return Go
	case strings.Contains(text, "def ") && strings.Contains(text, "):"),
		strings.Contains(text, "__name__"):
		return Python
	case strings.Contains(text, "fn main()"), strings.Contains(text, "println!"),
		strings.Contains(text, "let mut "):
		return Rust
	case bytes.HasPrefix(trimmed, []byte("#include ")):
		return C
	}
	return ""
}

// normalize converts go-enry language names to the names Detect returns.
func normalize(lang string) string {
	if lang == "Shell" {
		return Bash
	}
	return strings.ToLower(lang)
}
