package tablestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/searchengine"
)

// latestExpr computes a page's newest visit or bookmark timestamp. MAX
// with two arguments is SQLite's scalar maximum.
const latestExpr = `MAX(
	COALESCE((SELECT MAX(time) FROM visits v WHERE v.url = %[1]s), 0),
	COALESCE((SELECT MAX(time) FROM bookmarks b WHERE b.url = %[1]s), 0))`

// TermMatches returns the pages whose term index of the given kind
// contains term, with each page's latest event timestamp.
func (s *Store) TermMatches(ctx context.Context, kind searchengine.TermKind, term string) ([]searchengine.TermMatch, error) {
	var table string
	switch kind {
	case searchengine.TermContent:
		table = termTable
	case searchengine.TermTitle:
		table = titleTermTable
	case searchengine.TermURL:
		table = urlTermTable
	default:
		return nil, fmt.Errorf("unknown term kind %q", kind)
	}

	query := fmt.Sprintf("SELECT t.url, %s FROM %s t WHERE t.term = ?",
		fmt.Sprintf(latestExpr, "t.url"), table)
	rows, err := s.db.QueryContext(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("failed to match term %q: %w", term, err)
	}
	defer rows.Close() //nolint:errcheck

	var out []searchengine.TermMatch
	for rows.Next() {
		var m searchengine.TermMatch
		if err := rows.Scan(&m.PageID, &m.Latest); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DomainMatches returns the page IDs on the given registrable domain.
func (s *Store) DomainMatches(ctx context.Context, domain string) ([]string, error) {
	return s.queryStrings(ctx, "SELECT url FROM pages WHERE domain = ?", domain)
}

// TagMatches returns the page IDs carrying the given tag.
func (s *Store) TagMatches(ctx context.Context, tag string) ([]string, error) {
	return s.queryStrings(ctx, "SELECT url FROM tags WHERE name = ?", tag)
}

// LatestEvents walks visits and bookmarks newest-first within [start, end].
func (s *Store) LatestEvents(ctx context.Context, start, end int64, fn func(pageID string, ts int64) bool) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, time FROM (
			SELECT url, time FROM visits WHERE time BETWEEN ? AND ?
			UNION ALL
			SELECT url, time FROM bookmarks WHERE time BETWEEN ? AND ?
		) ORDER BY time DESC`, start, end, start, end)
	if err != nil {
		return fmt.Errorf("failed to walk events: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			url string
			ts  int64
		)
		if err := rows.Scan(&url, &ts); err != nil {
			return err
		}
		if !fn(url, ts) {
			return nil
		}
	}
	return rows.Err()
}

// Bookmarked reports which of the given page IDs carry a bookmark.
func (s *Store) Bookmarked(ctx context.Context, pageIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(pageIDs))
	if len(pageIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(pageIDs))
	for i, id := range pageIDs {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT url FROM bookmarks WHERE url IN (%s)",
		strings.TrimSuffix(strings.Repeat("?, ", len(pageIDs)), ", "))

	marked, err := s.queryStrings(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, url := range marked {
		out[url] = true
	}
	return out, nil
}

// DisplayDocs maps page IDs to display-ready search docs, preserving the
// input order. Unknown IDs are skipped.
func (s *Store) DisplayDocs(ctx context.Context, pageIDs []string) ([]model.SearchDoc, error) {
	query := fmt.Sprintf(`
		SELECT p.full_url, p.full_title, p.screenshot, %s,
			EXISTS (SELECT 1 FROM bookmarks b2 WHERE b2.url = p.url),
			COALESCE((SELECT fav_icon FROM fav_icons f WHERE f.hostname = p.hostname), '')
		FROM pages p WHERE p.url = ?`, fmt.Sprintf(latestExpr, "p.url"))

	out := make([]model.SearchDoc, 0, len(pageIDs))
	for _, id := range pageIDs {
		var doc model.SearchDoc
		err := s.db.QueryRowContext(ctx, query, id).Scan(
			&doc.URL, &doc.Title, &doc.Screenshot, &doc.DisplayTime,
			&doc.HasBookmark, &doc.FavIcon)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load page %q: %w", id, err)
		}

		tags, err := s.queryStrings(ctx,
			"SELECT name FROM tags WHERE url = ? ORDER BY name", id)
		if err != nil {
			return nil, err
		}
		doc.Tags = tags
		out = append(out, doc)
	}
	return out, nil
}

// Suggest completes a domain or tag prefix in lexicographic order.
func (s *Store) Suggest(ctx context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error) {
	var query string
	switch kind {
	case model.SuggestDomain:
		query = "SELECT DISTINCT domain FROM pages WHERE domain LIKE ? || '%' ORDER BY domain LIMIT ?"
	case model.SuggestTag:
		query = "SELECT DISTINCT name FROM tags WHERE name LIKE ? || '%' ORDER BY name LIMIT ?"
	default:
		return nil, fmt.Errorf("unknown suggestion kind %q", kind)
	}
	return s.queryStrings(ctx, query, prefix, limit)
}

// queryStrings runs a single-column string query and collects the rows.
func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
