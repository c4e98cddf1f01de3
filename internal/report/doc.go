// Package report provides search result output in several formats.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub Flavored Markdown with a result table
//
// Design decision: We separate result rendering from the result data
// structures (which are in the model package) so new output formats can
// be added without modifying the core data structures. Writers implement
// the Writer interface, allowing them to be composed for multi-format
// output.
package report
