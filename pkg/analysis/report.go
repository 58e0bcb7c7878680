package analysis

import "time"

// Report contains pre-computed views of a replacement set.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Replacements is the flat list for detailed output.
	Replacements []ReplacementEntry `json:"replacements,omitempty"`

	// ByFile groups replacements by target file.
	ByFile []FileAnalysis `json:"byFile"`

	// Conflicts lists rejected replacements.
	Conflicts []ConflictEntry `json:"conflicts,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary"`

	// Version is the report format version.
	Version string `json:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp"`
}

// ReplacementEntry represents a single replacement in the report.
type ReplacementEntry struct {
	FilePath string `json:"filePath"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	Text     string `json:"text"`
}

// ConflictEntry represents a rejected replacement and the one it collided with.
type ConflictEntry struct {
	Rejected ReplacementEntry `json:"rejected"`
	Existing ReplacementEntry `json:"existing"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files         int `json:"files"`
	Replacements  int `json:"replacements"`
	Insertions    int `json:"insertions"`
	Deletions     int `json:"deletions"`
	BytesRemoved  int `json:"bytesRemoved"`
	BytesInserted int `json:"bytesInserted"`
	Conflicts     int `json:"conflicts"`
}

// HasConflicts returns true if any replacement was rejected.
func (t Totals) HasConflicts() bool {
	return t.Conflicts > 0
}

// Delta returns the net change in bytes across all files.
func (t Totals) Delta() int {
	return t.BytesInserted - t.BytesRemoved
}

// FileAnalysis contains aggregated data for a single file.
type FileAnalysis struct {
	Path          string `json:"path"`
	Replacements  int    `json:"replacements"`
	Insertions    int    `json:"insertions"`
	Deletions     int    `json:"deletions"`
	BytesRemoved  int    `json:"bytesRemoved"`
	BytesInserted int    `json:"bytesInserted"`
	Delta         int    `json:"delta"`
	Conflicts     int    `json:"conflicts"`
}
