package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pagestash"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML configuration file layout. Every field is optional;
// absent fields keep their defaults or CLI-provided values.
type File struct {
	// DataDir overrides the index data directory.
	DataDir string `yaml:"data_dir"`

	// Verbose enables debug logging.
	Verbose *bool `yaml:"verbose"`

	// SearchLimit overrides the search window size.
	SearchLimit int `yaml:"search_limit"`

	// MigrationConcurrency overrides the migration parallelism.
	MigrationConcurrency int `yaml:"migration_concurrency"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should handle this error appropriately based on whether the config
// file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply merges the file's values into cfg. File values win over existing
// values only where the file actually sets something.
func (f *File) Apply(cfg *Config) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	if f.SearchLimit > 0 {
		cfg.SearchLimit = f.SearchLimit
	}
	if f.MigrationConcurrency > 0 {
		cfg.MigrationConcurrency = f.MigrationConcurrency
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pagestash in the current directory
// 3. Look for .pagestash in the user's home directory
//
// Returns the path to the configuration file if found, or empty string
// if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
