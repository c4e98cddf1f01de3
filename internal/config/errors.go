package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoDataDir is returned when the data directory is empty. Every
	// subcommand needs somewhere to put the index.
	ErrNoDataDir = errors.New("no data directory: provide --data-dir or leave the default")

	// ErrInvalidSearchLimit is returned when the search page size is not
	// positive.
	ErrInvalidSearchLimit = errors.New("invalid search limit: must be positive")

	// ErrInvalidConcurrency is returned when the migration concurrency
	// is not positive. Zero workers would stall the migration.
	ErrInvalidConcurrency = errors.New("invalid migration concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
