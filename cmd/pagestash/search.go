package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yomogi/pagestash/internal/config"
	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search the index",
		Long: `Search queries the index for pages matching all given terms
combined with the domain, tag, bookmark, and date filters.

With no terms, search lists recently visited or bookmarked pages that
pass the filters, newest first.

Examples:
  # Full-text search
  pagestash search golang generics

  # Recent bookmarks on a domain
  pagestash search --bookmarks --domain example.com

  # Tagged pages visited this year, as JSON
  pagestash search --tag reading --from 1735689600000 --json

  # Next page of results
  pagestash search golang --skip 10`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearchCmd,
	}

	cmd.Flags().StringSliceP("exclude", "x", nil, "Exclude pages containing this term (repeatable)")
	cmd.Flags().StringSliceP("domain", "d", nil, "Restrict to this registrable domain (repeatable)")
	cmd.Flags().StringSlice("exclude-domain", nil, "Exclude this registrable domain (repeatable)")
	cmd.Flags().StringSliceP("tag", "t", nil, "Restrict to pages carrying this tag (repeatable)")
	cmd.Flags().BoolP("bookmarks", "b", false, "Restrict to bookmarked pages")
	cmd.Flags().Int64("from", 0, "Inclusive lower bound on event time (Unix milliseconds)")
	cmd.Flags().Int64("to", 0, "Inclusive upper bound on event time (Unix milliseconds; default: now)")
	cmd.Flags().Int("skip", 0, "Number of leading results to skip")
	cmd.Flags().IntP("limit", "l", config.DefaultSearchLimit, "Maximum number of results")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	st, cfg, logger, err := setupStash(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close index", "error", err)
		}
	}()
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}

	params, err := buildSearchParams(cmd, args, cfg)
	if err != nil {
		return err
	}

	res, err := st.Search(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	writer, cleanup, err := buildReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := writer.Write(res); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// applyReportFlags folds the report flags into the base config.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// buildSearchParams assembles model.SearchParams from args and flags.
func buildSearchParams(cmd *cobra.Command, args []string, cfg *config.Config) (model.SearchParams, error) {
	params := model.SearchParams{
		Terms: args,
		Limit: cfg.SearchLimit,
	}

	var err error
	params.TermsExclude, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return params, err
	}
	params.Domains, err = cmd.Flags().GetStringSlice("domain")
	if err != nil {
		return params, err
	}
	params.DomainsExclude, err = cmd.Flags().GetStringSlice("exclude-domain")
	if err != nil {
		return params, err
	}
	params.Tags, err = cmd.Flags().GetStringSlice("tag")
	if err != nil {
		return params, err
	}
	params.BookmarksOnly, err = cmd.Flags().GetBool("bookmarks")
	if err != nil {
		return params, err
	}
	params.StartDate, err = cmd.Flags().GetInt64("from")
	if err != nil {
		return params, err
	}
	params.EndDate, err = cmd.Flags().GetInt64("to")
	if err != nil {
		return params, err
	}
	params.Skip, err = cmd.Flags().GetInt("skip")
	if err != nil {
		return params, err
	}
	if cmd.Flags().Changed("limit") {
		params.Limit, err = cmd.Flags().GetInt("limit")
		if err != nil {
			return params, err
		}
	}
	return params, nil
}

// buildReportWriter selects the report format and output destination.
// When --output is set, the report goes both to the file and to stdout.
// The returned cleanup closes the file, if any.
func buildReportWriter(cmd *cobra.Command, cfg *config.Config) (report.Writer, func(), error) {
	newWriter := func(w io.Writer) report.Writer {
		switch {
		case cfg.JSONReport:
			return report.NewJSONWriter(w, report.WithPrettyPrint())
		case cfg.MarkdownReport:
			return report.NewMarkdownWriter(w)
		default:
			return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
		}
	}

	if cfg.ReportFile == "" {
		return newWriter(cmd.OutOrStdout()), func() {}, nil
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	f, err := os.Create(cfg.ReportFile) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}

	writer := report.NewMultiWriter(newWriter(f), newWriter(cmd.OutOrStdout()))
	cleanup := func() { _ = f.Close() }
	return writer, cleanup, nil
}
