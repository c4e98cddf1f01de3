package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewBookmarkCmd creates the bookmark command.
func NewBookmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark [url]",
		Short: "Bookmark or un-bookmark an indexed page",
		Long: `Bookmark records a bookmark event for an already indexed page.
With --delete, the page's bookmarks are removed; if the page has no
remaining visits and no stored text, its index entry is dropped too.

Bookmarking a page that has not been indexed is an error.

Examples:
  # Bookmark a page now
  pagestash bookmark https://example.com

  # Bookmark at an explicit time (Unix milliseconds)
  pagestash bookmark --time 1700000000000 https://example.com

  # Remove the bookmark
  pagestash bookmark --delete https://example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runBookmarkCmd,
	}

	cmd.Flags().Int64("time", 0, "Bookmark time in Unix milliseconds (default: now)")
	cmd.Flags().BoolP("delete", "D", false, "Remove the page's bookmarks")

	return cmd
}

// runBookmarkCmd executes the bookmark command.
func runBookmarkCmd(cmd *cobra.Command, args []string) error {
	del, err := cmd.Flags().GetBool("delete")
	if err != nil {
		return err
	}
	ts, err := cmd.Flags().GetInt64("time")
	if err != nil {
		return err
	}
	if ts == 0 {
		ts = time.Now().UnixMilli()
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

	url := args[0]
	if del {
		if err := st.DelBookmark(cmd.Context(), url); err != nil {
			return fmt.Errorf("failed to remove bookmark: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark from %s\n", url)
		return nil
	}

	if err := st.AddBookmark(cmd.Context(), url, ts); err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s\n", url)
	return nil
}
