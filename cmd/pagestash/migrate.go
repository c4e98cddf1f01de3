package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/migrate"
)

// NewMigrateCmd creates the migrate command.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Move the index from the legacy backend to the structured one",
		Long: `Migrate copies every page from the legacy key-value backend into
the structured table backend, batch by batch, persisting its progress
after each batch. An interrupted run resumes where it left off; pages
already transferred are not reprocessed.

Once the transfer finishes, the structured backend becomes the active
one on the next startup. Commands in the current process keep using the
backend they started with.

Pressing Ctrl-C stops the run at the next batch boundary.`,
		Args: cobra.NoArgs,
		RunE: runMigrateCmd,
	}

	cmd.Flags().IntP("concurrency", "n", 0,
		"Per-batch transfer parallelism (default: migration_concurrency from config)")

	return cmd
}

// runMigrateCmd executes the migrate command.
func runMigrateCmd(cmd *cobra.Command, _ []string) error {
	st, cfg, logger, err := setupStash(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close index", "error", err)
		}
	}()

	concurrency, err := cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.MigrationConcurrency
	}

	// A signal requests a stop at the next batch boundary rather than
	// cancelling the context, so the in-flight batch commits cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, stopping after current batch")
			st.StopMigration()
		case <-done:
		}
	}()

	outcome, err := st.StartMigration(cmd.Context(), concurrency)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	switch outcome {
	case migrate.OutcomeFinished:
		fmt.Fprintln(cmd.OutOrStdout(), "Migration finished. The structured backend becomes active on next startup.")
	case migrate.OutcomeInterrupted:
		fmt.Fprintln(cmd.OutOrStdout(), "Migration interrupted. Run \"pagestash migrate\" again to resume.")
	case migrate.OutcomeAlreadyRunning:
		fmt.Fprintln(cmd.OutOrStdout(), "A migration run is already in progress.")
	}
	return nil
}
