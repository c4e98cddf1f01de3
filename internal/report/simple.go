package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yomogi/pagestash/internal/model"
)

// SimpleWriter outputs human-readable text results.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail (tags, timestamps) per result.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the result as plain text.
func (w *SimpleWriter) Write(res *model.SearchResult) (int, error) {
	var b strings.Builder

	if res.IsBadTerm {
		b.WriteString("No searchable terms in query.\n")
		return io.WriteString(w.output, b.String())
	}

	fmt.Fprintf(&b, "%d result(s)", res.TotalCount)
	if !res.ResultsExhausted {
		b.WriteString(", more available")
	}
	b.WriteString("\n\n")

	for i, doc := range res.Docs {
		marker := " "
		if doc.HasBookmark {
			marker = "*"
		}
		fmt.Fprintf(&b, "%2d %s %s\n", i+1, marker, doc.URL)
		if doc.Title != "" {
			fmt.Fprintf(&b, "      %s\n", doc.Title)
		}
		if w.verbose {
			when := time.UnixMilli(doc.DisplayTime).Format("2006-01-02 15:04")
			fmt.Fprintf(&b, "      last seen %s", when)
			if len(doc.Tags) > 0 {
				fmt.Fprintf(&b, "  [%s]", strings.Join(doc.Tags, ", "))
			}
			b.WriteString("\n")
		}
	}

	return io.WriteString(w.output, b.String())
}
