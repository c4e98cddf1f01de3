package textproc

import (
	"strings"

	"github.com/yomogi/pagestash/internal/model"
)

// PageTerms bundles the three term sets derived from one page's content.
type PageTerms struct {
	// Terms are the content terms (full text, keywords, description).
	Terms TermSet

	// TitleTerms come from the display title.
	TitleTerms TermSet

	// URLTerms come from the normalized URL path.
	URLTerms TermSet
}

// PageFromContent runs the full pipeline over a fetched content record:
// URL normalization plus term extraction for all three indexes. Both
// backends index pages through this one function, which is what keeps
// their term data comparable during migration.
func PageFromContent(content model.PageContent) (model.Page, PageTerms) {
	parts := NormalizeURL(content.URL)

	page := model.Page{
		URL:         parts.Key,
		FullURL:     content.URL,
		FullTitle:   content.Title,
		Text:        content.FullText,
		Domain:      parts.Domain,
		Hostname:    parts.Hostname,
		Lang:        content.Lang,
		Description: content.Description,
	}

	searchable := content.FullText
	if content.Description != "" {
		searchable += " " + content.Description
	}
	if len(content.Keywords) > 0 {
		searchable += " " + strings.Join(content.Keywords, " ")
	}

	terms := PageTerms{
		Terms:      ExtractTerms(searchable),
		TitleTerms: ExtractTerms(content.Title),
		URLTerms:   ExtractURLTerms(parts.Path),
	}
	return page, terms
}
