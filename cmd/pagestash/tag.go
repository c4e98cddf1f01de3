package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTagCmd creates the tag command.
func NewTagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag [url] [names...]",
		Short: "Attach or remove tags on an indexed page",
		Long: `Tag attaches one or more tag names to an already indexed page.
With --delete, the named tags are removed instead.

Tagging a page that has not been indexed is an error.

Examples:
  # Tag a page
  pagestash tag https://example.com reading go

  # Remove a tag
  pagestash tag --delete https://example.com reading`,
		Args: cobra.MinimumNArgs(2),
		RunE: runTagCmd,
	}

	cmd.Flags().BoolP("delete", "D", false, "Remove the named tags instead of adding them")

	return cmd
}

// runTagCmd executes the tag command.
func runTagCmd(cmd *cobra.Command, args []string) error {
	del, err := cmd.Flags().GetBool("delete")
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

	url, names := args[0], args[1:]
	for _, name := range names {
		if del {
			if err := st.DelTag(cmd.Context(), url, name); err != nil {
				return fmt.Errorf("failed to remove tag %q: %w", name, err)
			}
		} else {
			if err := st.AddTag(cmd.Context(), url, name); err != nil {
				return fmt.Errorf("failed to add tag %q: %w", name, err)
			}
		}
	}

	if del {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tag(s) from %s\n", len(names), url)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s with %d tag(s)\n", url, len(names))
	}
	return nil
}
