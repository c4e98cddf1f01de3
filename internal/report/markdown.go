package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/yomogi/pagestash/internal/model"
)

// MarkdownWriter outputs results as GitHub Flavored Markdown with a
// result table. Useful for pasting into issues or notes.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the result as Markdown.
func (w *MarkdownWriter) Write(res *model.SearchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")

	if res.IsBadTerm {
		md.Note("The query contained no searchable terms.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(res.Docs))
	for i, doc := range res.Docs {
		marker := ""
		if doc.HasBookmark {
			marker = "★"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("[%s](%s)", doc.Title, doc.URL),
			marker,
			time.UnixMilli(doc.DisplayTime).Format("2006-01-02"),
			strings.Join(doc.Tags, ", "),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Page", "Bookmark", "Last seen", "Tags"},
		Rows:   rows,
	})
	md.PlainText("")

	if res.ResultsExhausted {
		md.PlainTextf("%d result(s) total.", res.TotalCount)
	} else {
		md.PlainTextf("Showing %d of %d result(s).", len(res.Docs), res.TotalCount)
	}

	return len(md.String()), md.Build()
}
