package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run options.
	FieldStyle  = "style"
	FieldStrict = "strict"
	FieldDryRun = "dry_run"
	FieldJobs   = "jobs"

	// Per-file fields.
	FieldStatus   = "status"
	FieldEdits    = "edits"
	FieldLanguage = "language"
	FieldStage    = "stage"

	// Statistics fields.
	FieldReplacements   = "replacements"
	FieldConflicts      = "conflicts"
	FieldFilesWritten   = "files_written"
	FieldFilesFailed    = "files_failed"
	FieldFilesUnchanged = "files_unchanged"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
