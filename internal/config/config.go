package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pagestash"

	// DefaultSearchLimit is the page size of a search result window.
	// Ten results fit a terminal without paging and match what the
	// suggest commands return by default.
	DefaultSearchLimit = 10

	// DefaultMigrationConcurrency bounds the per-batch export/import
	// parallelism during backend migration. The legacy backend
	// serializes writes anyway; two in-flight pages keep the SQLite
	// side busy without piling up exported page records in memory.
	DefaultMigrationConcurrency = 2

	// legacyDirName and tableDirName are the per-backend subdirectories
	// under the data directory.
	legacyDirName = "index"
	tableDirName  = "tables"

	// settingsFileName holds the durable settings (migration progress,
	// active backend flag) under the data directory.
	settingsFileName = "settings.json"
)

// Config holds all configuration options for pagestash.
// This struct is designed to be populated from CLI flags and passed
// through the application via dependency injection rather than global
// state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// DataDir is the root directory holding both backends and the
	// settings file. Defaults to the XDG data directory.
	DataDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// SearchLimit is the number of results per search window.
	SearchLimit int

	// MigrationConcurrency is the per-batch parallelism of the backend
	// migration.
	MigrationConcurrency int

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .pagestash in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// JSONReport enables JSON output for search results.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output for search results.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for search reports. When set,
	// the report is written to this file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DataDir:              XDGDataDir(),
		SearchLimit:          DefaultSearchLimit,
		MigrationConcurrency: DefaultMigrationConcurrency,
	}
}

// LegacyDir returns the directory of the legacy key-value backend.
func (c *Config) LegacyDir() string {
	return filepath.Join(c.DataDir, legacyDirName)
}

// TableDir returns the directory of the structured table backend.
func (c *Config) TableDir() string {
	return filepath.Join(c.DataDir, tableDirName)
}

// SettingsPath returns the path of the durable settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.DataDir, settingsFileName)
}

// XDGDataDir returns the XDG data directory for pagestash.
// On Linux: ~/.local/share/pagestash
// On macOS: ~/Library/Application Support/pagestash
// On Windows: %LOCALAPPDATA%\pagestash
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagestash.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid. It returns a specific
// error describing what is invalid.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.SearchLimit <= 0 {
		return ErrInvalidSearchLimit
	}
	if c.MigrationConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
