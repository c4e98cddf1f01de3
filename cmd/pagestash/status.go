package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active backend and migration state",
		Long: `Status prints which storage backend is active and how far the
backend migration has progressed.`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	st, cfg, logger, err := setupStash(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close index", "error", err)
		}
	}()

	state, err := st.MigrationState()
	if err != nil {
		return fmt.Errorf("failed to read migration state: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Data directory:  %s\n", cfg.DataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Active backend:  %s\n", st.Handle())
	fmt.Fprintf(cmd.OutOrStdout(), "Migration state: %s\n", state)
	return nil
}
