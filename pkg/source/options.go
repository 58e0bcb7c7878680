// Package source loads replacements exported by refactoring tools.
//
// An export is a YAML document in the layout written by clang-tidy and
// other clang tools with -export-fixes:
//
//	MainSourceFile: src/a.cc
//	Replacements:
//	  - FilePath: src/a.cc
//	    Offset: 12
//	    Length: 3
//	    ReplacementText: "xyz"
//
// Replacements nested under Diagnostics[].DiagnosticMessage and
// Diagnostics[].Notes are read as well.
package source

// DiscoverOptions controls which export files are loaded.
type DiscoverOptions struct {
	// Paths are the user-specified paths (files or directories) to search.
	// If empty, defaults to the current working directory.
	Paths []string

	// WorkingDir is the base directory used to resolve relative Paths.
	// If empty, the current process working directory is used.
	WorkingDir string

	// Extensions is the set of file extensions (lowercase, with leading dot)
	// considered exports. Defaults to DefaultExtensions().
	Extensions []string

	// IncludeGlobs are doublestar patterns, relative to WorkingDir, a file
	// must match. Empty means every file with a matching extension.
	IncludeGlobs []string

	// ExcludeGlobs are doublestar patterns used to skip files or directories.
	ExcludeGlobs []string

	// FollowSymlinks controls whether directory symlinks are traversed.
	FollowSymlinks bool
}

// DefaultExtensions returns the default set of export file extensions.
func DefaultExtensions() []string {
	return []string{".yaml", ".yml"}
}

// effectiveExtensions returns the extensions to use, defaulting if empty.
func (o DiscoverOptions) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

// effectivePaths returns the paths to process, defaulting to "." if empty.
func (o DiscoverOptions) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
