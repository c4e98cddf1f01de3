package tablestore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/textproc"
)

// Term side tables backing the full-text indexes declared in
// DefaultRegistry.
const (
	termTable      = "pages_terms"
	titleTermTable = "pages_title_terms"
	urlTermTable   = "pages_url_terms"
)

// AddPage indexes a page's content plus any associated visit, bookmark,
// tag, and favicon data in one transaction.
//
// Re-indexing an existing page merges: display fields take the newest
// non-empty values and the term side tables only ever grow, matching the
// legacy backend's behavior.
func (s *Store) AddPage(ctx context.Context, req model.IndexRequest) error {
	page, terms := textproc.PageFromContent(req.Content)
	if req.Screenshot != "" {
		page.Screenshot = req.Screenshot
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := upsertPage(ctx, tx, page); err != nil {
			return err
		}

		termSets := []struct {
			table string
			set   textproc.TermSet
		}{
			{termTable, terms.Terms},
			{titleTermTable, terms.TitleTerms},
			{urlTermTable, terms.URLTerms},
		}
		for _, ts := range termSets {
			if err := insertTerms(ctx, tx, ts.table, page.URL, ts.set); err != nil {
				return err
			}
		}

		for _, ts := range req.VisitTimes {
			if err := insertVisit(ctx, tx, page.URL, ts, model.VisitInteraction{}, false); err != nil {
				return err
			}
		}
		if req.Bookmark != 0 {
			if err := upsertBookmark(ctx, tx, page.URL, req.Bookmark); err != nil {
				return err
			}
		}
		for _, name := range req.Tags {
			if err := insertTag(ctx, tx, page.URL, name); err != nil {
				return err
			}
		}
		if req.FavIcon != "" {
			if err := upsertFavIcon(ctx, tx, page.Hostname, req.FavIcon); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertPage(ctx context.Context, tx *sql.Tx, page model.Page) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO pages (url, full_url, full_title, text, domain, hostname,
			screenshot, lang, canonical_url, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			full_url = excluded.full_url,
			full_title = COALESCE(NULLIF(excluded.full_title, ''), pages.full_title),
			text = COALESCE(NULLIF(excluded.text, ''), pages.text),
			domain = excluded.domain,
			hostname = excluded.hostname,
			screenshot = COALESCE(NULLIF(excluded.screenshot, ''), pages.screenshot),
			lang = COALESCE(NULLIF(excluded.lang, ''), pages.lang),
			canonical_url = COALESCE(NULLIF(excluded.canonical_url, ''), pages.canonical_url),
			description = COALESCE(NULLIF(excluded.description, ''), pages.description)`,
		page.URL, page.FullURL, page.FullTitle, page.Text, page.Domain,
		page.Hostname, page.Screenshot, page.Lang, page.CanonicalURL,
		page.Description)
	if err != nil {
		return fmt.Errorf("failed to upsert page %q: %w", page.URL, err)
	}
	return nil
}

func insertTerms(ctx context.Context, tx *sql.Tx, table, url string, terms textproc.TermSet) error {
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT OR IGNORE INTO %s (term, url) VALUES (?, ?)", table))
	if err != nil {
		return fmt.Errorf("failed to prepare term insert for %s: %w", table, err)
	}
	defer stmt.Close() //nolint:errcheck

	for term := range terms {
		if _, err := stmt.ExecContext(ctx, term, url); err != nil {
			return fmt.Errorf("failed to index term %q in %s: %w", term, table, err)
		}
	}
	return nil
}

// insertVisit writes one visit row. With overwrite false an existing visit
// at the same (time, url) keeps its recorded interaction.
func insertVisit(ctx context.Context, tx *sql.Tx, url string, ts int64, in model.VisitInteraction, overwrite bool) error {
	verb := "INSERT OR IGNORE"
	if overwrite {
		verb = "INSERT OR REPLACE"
	}
	_, err := tx.ExecContext(ctx, verb+` INTO visits
		(url, time, duration, scroll_px, scroll_perc, scroll_max_px, scroll_max_perc)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		url, ts, in.Duration, in.ScrollPx, in.ScrollPerc, in.ScrollMaxPx, in.ScrollMaxPerc)
	if err != nil {
		return fmt.Errorf("failed to insert visit of %q at %d: %w", url, ts, err)
	}
	return nil
}

func upsertBookmark(ctx context.Context, tx *sql.Tx, url string, ts int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO bookmarks (url, time) VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET time = excluded.time`, url, ts)
	if err != nil {
		return fmt.Errorf("failed to upsert bookmark of %q: %w", url, err)
	}
	return nil
}

func insertTag(ctx context.Context, tx *sql.Tx, url, name string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO tags (name, url) VALUES (?, ?)", name, url)
	if err != nil {
		return fmt.Errorf("failed to tag %q with %q: %w", url, name, err)
	}
	return nil
}

func upsertFavIcon(ctx context.Context, tx *sql.Tx, hostname, icon string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO fav_icons (hostname, fav_icon) VALUES (?, ?)
		ON CONFLICT(hostname) DO UPDATE SET fav_icon = excluded.fav_icon`,
		hostname, icon)
	if err != nil {
		return fmt.Errorf("failed to upsert favicon for %q: %w", hostname, err)
	}
	return nil
}

// pageExists reports whether a page row exists for the given normalized
// URL.
func pageExists(ctx context.Context, tx *sql.Tx, url string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE url = ?", url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up page %q: %w", url, err)
	}
	return count > 0, nil
}

// AddVisit records a visit for an already-indexed page. Visiting a URL
// with no page record is a hard error.
func (s *Store) AddVisit(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := pageExists(ctx, tx, url)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("cannot add visit for %q: %w", rawURL, ErrNoPage)
		}
		return insertVisit(ctx, tx, url, ts, interaction, true)
	})
}

// AddBookmark records a bookmark for an already-indexed page.
func (s *Store) AddBookmark(ctx context.Context, rawURL string, ts int64) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := pageExists(ctx, tx, url)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("cannot bookmark %q: %w", rawURL, ErrNoPage)
		}
		return upsertBookmark(ctx, tx, url, ts)
	})
}

// AddTag associates a tag name with an already-indexed page.
func (s *Store) AddTag(ctx context.Context, rawURL, name string) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := pageExists(ctx, tx, url)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("cannot tag %q: %w", rawURL, ErrNoPage)
		}
		return insertTag(ctx, tx, url, name)
	})
}

// DelTag removes a tag from a page. Removing an absent tag is a no-op.
func (s *Store) DelTag(ctx context.Context, rawURL, name string) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM tags WHERE url = ? AND name = ?", url, name); err != nil {
			return fmt.Errorf("failed to delete tag %q from %q: %w", name, url, err)
		}
		return nil
	})
}

// UpdateVisitInteraction attaches activity metrics to an existing visit.
func (s *Store) UpdateVisitInteraction(ctx context.Context, rawURL string, ts int64, in model.VisitInteraction) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE visits SET duration = ?, scroll_px = ?, scroll_perc = ?,
				scroll_max_px = ?, scroll_max_perc = ?
			WHERE url = ? AND time = ?`,
			in.Duration, in.ScrollPx, in.ScrollPerc, in.ScrollMaxPx, in.ScrollMaxPerc,
			url, ts)
		if err != nil {
			return fmt.Errorf("failed to update visit of %q at %d: %w", url, ts, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no visit of %q at %d: %w", rawURL, ts, ErrNoPage)
		}
		return nil
	})
}

// DelBookmark removes a page's bookmark, deleting the page entirely when
// no events remain.
func (s *Store) DelBookmark(ctx context.Context, rawURL string) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM bookmarks WHERE url = ?", url); err != nil {
			return fmt.Errorf("failed to delete bookmark of %q: %w", url, err)
		}
		return deleteIfOrphaned(ctx, tx, url)
	})
}

// DelVisit removes one visit, deleting the page entirely when no events
// remain.
func (s *Store) DelVisit(ctx context.Context, rawURL string, ts int64) error {
	url := textproc.NormalizeURL(rawURL).Key

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM visits WHERE url = ? AND time = ?", url, ts); err != nil {
			return fmt.Errorf("failed to delete visit of %q at %d: %w", url, ts, err)
		}
		return deleteIfOrphaned(ctx, tx, url)
	})
}

// deleteIfOrphaned removes the page when it has no remaining visits or
// bookmarks. Content stubs awaiting their first event are kept.
func deleteIfOrphaned(ctx context.Context, tx *sql.Tx, url string) error {
	var events int
	err := tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM visits WHERE url = ?)
		     + (SELECT COUNT(*) FROM bookmarks WHERE url = ?)`, url, url).Scan(&events)
	if err != nil {
		return fmt.Errorf("failed to count events of %q: %w", url, err)
	}
	if events > 0 {
		return nil
	}

	var text string
	err = tx.QueryRowContext(ctx,
		"SELECT text FROM pages WHERE url = ?", url).Scan(&text)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read page %q: %w", url, err)
	}
	if text == "" {
		return nil
	}
	return deletePage(ctx, tx, url)
}

// deletePage removes the page row and every row referencing it.
func deletePage(ctx context.Context, tx *sql.Tx, url string) error {
	stmts := []string{
		"DELETE FROM " + termTable + " WHERE url = ?",
		"DELETE FROM " + titleTermTable + " WHERE url = ?",
		"DELETE FROM " + urlTermTable + " WHERE url = ?",
		"DELETE FROM visits WHERE url = ?",
		"DELETE FROM bookmarks WHERE url = ?",
		"DELETE FROM tags WHERE url = ?",
		"DELETE FROM pages WHERE url = ?",
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, url); err != nil {
			return fmt.Errorf("failed to delete page %q: %w", url, err)
		}
	}
	return nil
}

// DelPages removes the given pages and all their associated data. Unknown
// URLs are skipped silently.
func (s *Store) DelPages(ctx context.Context, rawURLs []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, raw := range rawURLs {
			if err := deletePage(ctx, tx, textproc.NormalizeURL(raw).Key); err != nil {
				return err
			}
		}
		return nil
	})
}

// DelPagesByDomain removes every page on the given registrable domain.
func (s *Store) DelPagesByDomain(ctx context.Context, domain string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		urls, err := selectURLs(ctx, tx, "SELECT url FROM pages WHERE domain = ?", domain)
		if err != nil {
			return err
		}
		for _, url := range urls {
			if err := deletePage(ctx, tx, url); err != nil {
				return err
			}
		}
		return nil
	})
}

// DelPagesByPattern removes every page whose normalized URL matches re.
func (s *Store) DelPagesByPattern(ctx context.Context, re *regexp.Regexp) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		urls, err := selectURLs(ctx, tx, "SELECT url FROM pages")
		if err != nil {
			return err
		}
		for _, url := range urls {
			if !re.MatchString(url) {
				continue
			}
			if err := deletePage(ctx, tx, url); err != nil {
				return err
			}
		}
		return nil
	})
}

// selectURLs runs a single-column url query and collects the rows.
func selectURLs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		out = append(out, url)
	}
	return out, rows.Err()
}
