package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/config"
)

// NewRootCmd creates the root command for pagestash.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagestash",
		Short: "Full-text index for saved web pages",
		Long: `pagestash keeps a searchable index of saved web pages: their content,
visit history, bookmarks, and tags. Queries combine full-text terms with
domain, tag, bookmark, and date filters.

The index has two storage backends; "pagestash migrate" moves an existing
index from the legacy key-value backend to the structured one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("data-dir", config.XDGDataDir(), "Index data directory")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .pagestash in current or home directory)")

	// Add subcommands
	cmd.AddCommand(NewAddCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewSuggestCmd())
	cmd.AddCommand(NewTagCmd())
	cmd.AddCommand(NewBookmarkCmd())
	cmd.AddCommand(NewDelCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
