package analysis

// SortField specifies how to sort analysis results.
type SortField string

const (
	// SortByCount sorts by replacement count (descending by default).
	SortByCount SortField = "count"
	// SortByAlpha sorts alphabetically.
	SortByAlpha SortField = "alpha"
	// SortByDelta sorts by the absolute size change (largest first).
	SortByDelta SortField = "delta"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByCount, SortByAlpha, SortByDelta:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeReplacements includes the flat replacement list.
	IncludeReplacements bool

	// SortBy specifies how to sort ByFile.
	SortBy SortField

	// SortDesc sorts counts in descending order (highest first).
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SortBy:   SortByCount,
		SortDesc: true,
	}
}
