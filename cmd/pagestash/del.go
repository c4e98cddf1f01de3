package main

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/cobra"
)

// NewDelCmd creates the del command.
func NewDelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "del [urls...]",
		Short: "Delete pages from the index",
		Long: `Del removes pages and all of their visits, bookmarks, and tags.
Pages are selected by explicit URLs, by registrable domain, or by a
regular expression matched against normalized URLs. Exactly one
selection method must be used.

Examples:
  # Delete specific pages
  pagestash del https://example.com/a https://example.com/b

  # Delete everything on a domain
  pagestash del --domain example.com

  # Delete by URL pattern
  pagestash del --pattern 'example\.com/drafts/.*'`,
		Args: cobra.ArbitraryArgs,
		RunE: runDelCmd,
	}

	cmd.Flags().StringP("domain", "d", "", "Delete all pages on this registrable domain")
	cmd.Flags().StringP("pattern", "p", "", "Delete pages whose normalized URL matches this regular expression")

	return cmd
}

// runDelCmd executes the del command.
func runDelCmd(cmd *cobra.Command, args []string) error {
	domain, err := cmd.Flags().GetString("domain")
	if err != nil {
		return err
	}
	pattern, err := cmd.Flags().GetString("pattern")
	if err != nil {
		return err
	}

	selections := 0
	if len(args) > 0 {
		selections++
	}
	if domain != "" {
		selections++
	}
	if pattern != "" {
		selections++
	}
	if selections != 1 {
		return errors.New("specify exactly one of: page URLs, --domain, or --pattern")
	}

	var re *regexp.Regexp
	if pattern != "" {
		re, err = regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
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

	switch {
	case len(args) > 0:
		if err := st.DelPages(cmd.Context(), args); err != nil {
			return fmt.Errorf("failed to delete pages: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d page(s)\n", len(args))
	case domain != "":
		if err := st.DelPagesByDomain(cmd.Context(), domain); err != nil {
			return fmt.Errorf("failed to delete pages on %s: %w", domain, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted pages on %s\n", domain)
	default:
		if err := st.DelPagesByPattern(cmd.Context(), re); err != nil {
			return fmt.Errorf("failed to delete pages matching %s: %w", pattern, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted pages matching %s\n", pattern)
	}
	return nil
}
