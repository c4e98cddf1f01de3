package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/config"
	"github.com/yomogi/pagestash/internal/model"
)

// NewSuggestCmd creates the suggest command.
func NewSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [domain|tag] [prefix]",
		Short: "Complete a domain or tag prefix from the index",
		Long: `Suggest lists indexed domains or tag names starting with the
given prefix, in lexicographic order. An empty prefix lists from the
beginning.

Examples:
  # Complete a domain prefix
  pagestash suggest domain exam

  # List the first tags
  pagestash suggest tag ""`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSuggestCmd,
	}

	cmd.Flags().IntP("limit", "l", config.DefaultSearchLimit, "Maximum number of suggestions")

	return cmd
}

// runSuggestCmd executes the suggest command.
func runSuggestCmd(cmd *cobra.Command, args []string) error {
	var kind model.SuggestKind
	switch args[0] {
	case "domain":
		kind = model.SuggestDomain
	case "tag":
		kind = model.SuggestTag
	default:
		return fmt.Errorf("unknown suggestion kind %q (expected domain or tag)", args[0])
	}

	prefix := ""
	if len(args) == 2 {
		prefix = args[1]
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	st, _, logger, err := setupStash(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close index", "error", err)
		}
	}()

	suggestions, err := st.Suggest(cmd.Context(), kind, prefix, limit)
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	for _, s := range suggestions {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}
