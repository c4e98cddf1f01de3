package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/config"
	"github.com/yomogi/pagestash/internal/legacy"
	"github.com/yomogi/pagestash/internal/log"
	"github.com/yomogi/pagestash/internal/settings"
	"github.com/yomogi/pagestash/internal/stash"
	"github.com/yomogi/pagestash/internal/tablestore"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the persistent flags and the
// optional configuration file. Flag values that were explicitly set
// win over the file; the file wins over defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if it
	// is not found. If no path was specified, silently continue with
	// defaults when no file exists.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.Apply(cfg)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// An explicitly set --data-dir flag overrides the config file.
	dataDirFlag := cmd.Flags().Lookup("data-dir")
	if dataDirFlag == nil {
		dataDirFlag = cmd.Root().PersistentFlags().Lookup("data-dir")
	}
	if dataDirFlag != nil && (dataDirFlag.Changed || cfg.DataDir == "") {
		cfg.DataDir = dataDirFlag.Value.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// openStash opens both backends under the configured data directory and
// wires them into a Stash. The caller must Close the returned Stash.
func openStash(cfg *config.Config, logger *slog.Logger) (*stash.Stash, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	set, err := settings.OpenFile(cfg.SettingsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}

	leg, err := legacy.Open(cfg.LegacyDir(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy backend: %w", err)
	}

	tab, err := tablestore.Open(cfg.TableDir(), logger)
	if err != nil {
		_ = leg.Close()
		return nil, fmt.Errorf("failed to open table backend: %w", err)
	}

	st, err := stash.New(leg, tab, set, logger)
	if err != nil {
		_ = leg.Close()
		_ = tab.Close()
		return nil, err
	}
	return st, nil
}

// setupStash builds config, logger, and an open Stash in one step.
// Most commands call this at the top of their RunE.
func setupStash(cmd *cobra.Command) (*stash.Stash, *config.Config, *slog.Logger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := log.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	st, err := openStash(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return st, cfg, logger, nil
}
