package searchengine

import (
	"context"

	"github.com/yomogi/pagestash/internal/model"
)

// TermKind selects which per-page term index a lookup consults.
type TermKind string

const (
	// TermContent matches terms extracted from the page body.
	TermContent TermKind = "content"
	// TermTitle matches terms extracted from the page title.
	TermTitle TermKind = "title"
	// TermURL matches terms extracted from the page URL path.
	TermURL TermKind = "url"
)

// TermMatch is one page matched by a term lookup, with the timestamp of
// the page's newest visit or bookmark at index time.
type TermMatch struct {
	PageID string
	Latest int64
}

// Source is the read side a backend exposes to the engine. Lookups for
// absent terms, domains, and tags return empty results, never errors.
type Source interface {
	// TermMatches returns the pages whose index of the given kind
	// contains term.
	TermMatches(ctx context.Context, kind TermKind, term string) ([]TermMatch, error)

	// DomainMatches returns the page IDs on a registrable domain.
	DomainMatches(ctx context.Context, domain string) ([]string, error)

	// TagMatches returns the page IDs carrying a tag.
	TagMatches(ctx context.Context, tag string) ([]string, error)

	// LatestEvents walks visits and bookmarks newest-first within
	// [start, end], calling fn once per event. Returning false from fn
	// stops the walk.
	LatestEvents(ctx context.Context, start, end int64, fn func(pageID string, ts int64) bool) error

	// Bookmarked reports which of the given pages carry a bookmark.
	Bookmarked(ctx context.Context, pageIDs []string) (map[string]bool, error)

	// DisplayDocs resolves page IDs to display-ready docs, preserving
	// input order and skipping unknown IDs.
	DisplayDocs(ctx context.Context, pageIDs []string) ([]model.SearchDoc, error)

	// Suggest returns up to limit known domains or tags starting with
	// prefix, in lexicographic order.
	Suggest(ctx context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error)
}
