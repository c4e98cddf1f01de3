package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/model"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [url]",
		Short: "Index a page's content, visits, bookmark, and tags",
		Long: `Add indexes a page under its normalized URL.

Page text can be passed inline with --text or read from a file with
--text-file. Repeating --visit records several visit times; without any
--visit flag a single visit at the current time is recorded.

Examples:
  # Index a page with inline text
  pagestash add https://example.com/article --title "An Article" --text "full text here"

  # Index a page from a text file, bookmark it, and tag it
  pagestash add https://example.com --text-file page.txt --bookmark --tag reading --tag go

  # Record extra visit times (Unix milliseconds)
  pagestash add https://example.com --visit 1700000000000 --visit 1700000100000`,
		Args: cobra.ExactArgs(1),
		RunE: runAddCmd,
	}

	cmd.Flags().StringP("title", "t", "", "Page title")
	cmd.Flags().String("text", "", "Page text (mutually exclusive with --text-file)")
	cmd.Flags().String("text-file", "", "Read page text from file (mutually exclusive with --text)")
	cmd.Flags().String("description", "", "Page meta description")
	cmd.Flags().String("lang", "", "Page language code")
	cmd.Flags().StringSlice("keyword", nil, "Page keyword (repeatable)")
	cmd.Flags().Int64Slice("visit", nil, "Visit time in Unix milliseconds (repeatable; default: now)")
	cmd.Flags().BoolP("bookmark", "b", false, "Bookmark the page at the current time")
	cmd.Flags().StringSlice("tag", nil, "Tag name to attach (repeatable)")
	cmd.Flags().String("screenshot", "", "Screenshot reference")
	cmd.Flags().String("favicon", "", "Favicon data URI for the page's hostname")

	return cmd
}

// runAddCmd executes the add command.
func runAddCmd(cmd *cobra.Command, args []string) error {
	st, _, logger, err := setupStash(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close index", "error", err)
		}
	}()

	req, err := buildIndexRequest(cmd, args[0])
	if err != nil {
		return err
	}

	if err := st.AddPage(cmd.Context(), req); err != nil {
		return fmt.Errorf("failed to index page: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s\n", args[0])
	return nil
}

// buildIndexRequest assembles a model.IndexRequest from flags.
func buildIndexRequest(cmd *cobra.Command, url string) (model.IndexRequest, error) {
	var req model.IndexRequest
	req.Content.URL = url

	var err error
	req.Content.Title, err = cmd.Flags().GetString("title")
	if err != nil {
		return req, err
	}

	text, err := cmd.Flags().GetString("text")
	if err != nil {
		return req, err
	}
	textFile, err := cmd.Flags().GetString("text-file")
	if err != nil {
		return req, err
	}
	if text != "" && textFile != "" {
		return req, fmt.Errorf("--text and --text-file are mutually exclusive")
	}
	if textFile != "" {
		data, err := os.ReadFile(textFile) //nolint:gosec // User-provided input path is intentional
		if err != nil {
			return req, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	}
	req.Content.FullText = text

	req.Content.Description, err = cmd.Flags().GetString("description")
	if err != nil {
		return req, err
	}
	req.Content.Lang, err = cmd.Flags().GetString("lang")
	if err != nil {
		return req, err
	}
	req.Content.Keywords, err = cmd.Flags().GetStringSlice("keyword")
	if err != nil {
		return req, err
	}

	req.VisitTimes, err = cmd.Flags().GetInt64Slice("visit")
	if err != nil {
		return req, err
	}
	if len(req.VisitTimes) == 0 {
		req.VisitTimes = []int64{time.Now().UnixMilli()}
	}

	bookmark, err := cmd.Flags().GetBool("bookmark")
	if err != nil {
		return req, err
	}
	if bookmark {
		req.Bookmark = time.Now().UnixMilli()
	}

	req.Tags, err = cmd.Flags().GetStringSlice("tag")
	if err != nil {
		return req, err
	}
	req.Screenshot, err = cmd.Flags().GetString("screenshot")
	if err != nil {
		return req, err
	}
	req.FavIcon, err = cmd.Flags().GetString("favicon")
	if err != nil {
		return req, err
	}
	return req, nil
}
