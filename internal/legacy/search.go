package legacy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/searchengine"
)

// TermMatches returns the pages whose index of the given kind contains
// term, with each page's latest event timestamp. An absent term returns
// an empty slice, never an error.
func (s *Store) TermMatches(ctx context.Context, kind searchengine.TermKind, term string) ([]searchengine.TermMatch, error) {
	var key string
	switch kind {
	case searchengine.TermContent:
		key = termKey(term)
	case searchengine.TermTitle:
		key = titleKey(term)
	case searchengine.TermURL:
		key = urlTermKey(term)
	default:
		return nil, fmt.Errorf("unknown term kind %q", kind)
	}

	var val indexValue
	if _, err := s.getJSON(key, &val); err != nil {
		return nil, err
	}

	out := make([]searchengine.TermMatch, 0, len(val))
	for pageID, entry := range val {
		out = append(out, searchengine.TermMatch{PageID: pageID, Latest: entry.Latest})
	}
	return out, nil
}

// DomainMatches returns the page IDs on the given registrable domain.
func (s *Store) DomainMatches(ctx context.Context, domain string) ([]string, error) {
	var val indexValue
	if _, err := s.getJSON(domainKey(domain), &val); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(val))
	for pageID := range val {
		out = append(out, pageID)
	}
	return out, nil
}

// TagMatches returns the page IDs carrying the given tag.
func (s *Store) TagMatches(ctx context.Context, tag string) ([]string, error) {
	var val indexValue
	if _, err := s.getJSON(tagKey(tag), &val); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(val))
	for pageID := range val {
		out = append(out, pageID)
	}
	return out, nil
}

// LatestEvents walks visit and bookmark events newest-first within
// [start, end], invoking fn once per event with the page ID and the event
// timestamp. Returning false from fn stops the walk early.
func (s *Store) LatestEvents(ctx context.Context, start, end int64, fn func(pageID string, ts int64) bool) error {
	visits, err := s.eventIter(visitPrefix, start, end)
	if err != nil {
		return err
	}
	defer visits.close()

	bookmarks, err := s.eventIter(bookmarkPrefix, start, end)
	if err != nil {
		return err
	}
	defer bookmarks.close()

	// Two-way reverse merge: always emit the newer of the two heads.
	for visits.valid() || bookmarks.valid() {
		next := visits
		if !visits.valid() || (bookmarks.valid() && bookmarks.ts() > visits.ts()) {
			next = bookmarks
		}

		pageID, ts, err := next.event()
		if err != nil {
			return err
		}
		if !fn(pageID, ts) {
			return nil
		}
		next.prev()
	}
	return nil
}

// eventCursor walks one timestamp-keyed prefix newest-first.
type eventCursor struct {
	it *pebble.Iterator
}

// eventIter opens a reverse cursor over prefix limited to [start, end].
func (s *Store) eventIter(prefix string, start, end int64) (*eventCursor, error) {
	lower := []byte(prefix + padTimestamp(start))
	upper := prefixUpperBound(prefix + padTimestamp(end))

	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q range: %w", prefix, err)
	}
	it.Last()
	return &eventCursor{it: it}, nil
}

func (c *eventCursor) valid() bool { return c.it.Valid() }
func (c *eventCursor) prev()       { c.it.Prev() }
func (c *eventCursor) close()      { _ = c.it.Close() }

// ts returns the timestamp of the current event key.
func (c *eventCursor) ts() int64 {
	return timestampOfKey(string(c.it.Key()))
}

// event decodes the current entry.
func (c *eventCursor) event() (string, int64, error) {
	var val timestampValue
	if err := json.Unmarshal(c.it.Value(), &val); err != nil {
		return "", 0, fmt.Errorf("failed to decode event %q: %w", c.it.Key(), err)
	}
	return val.PageID, c.ts(), nil
}

// Bookmarked reports which of the given page IDs carry a bookmark.
func (s *Store) Bookmarked(ctx context.Context, pageIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(pageIDs))
	for _, pageID := range pageIDs {
		doc, err := s.getDoc(pageID)
		if err != nil {
			return nil, err
		}
		if doc != nil && len(doc.Bookmarks) > 0 {
			out[pageID] = true
		}
	}
	return out, nil
}

// DisplayDocs maps page IDs to display-ready search docs, preserving the
// input order. Unknown IDs are skipped.
func (s *Store) DisplayDocs(ctx context.Context, pageIDs []string) ([]model.SearchDoc, error) {
	out := make([]model.SearchDoc, 0, len(pageIDs))
	for _, pageID := range pageIDs {
		doc, err := s.getDoc(pageID)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			continue
		}

		tags := make([]string, 0, len(doc.Tags))
		for key := range doc.Tags {
			tags = append(tags, stripKeyType(key))
		}

		out = append(out, model.SearchDoc{
			URL:         doc.Page.FullURL,
			Title:       doc.Page.FullTitle,
			HasBookmark: len(doc.Bookmarks) > 0,
			DisplayTime: doc.Latest,
			Tags:        tags,
			Screenshot:  doc.Page.Screenshot,
			FavIcon:     doc.FavIcon,
		})
	}
	return out, nil
}

// Suggest returns up to limit index entries whose bare key starts with
// prefix, in index (lexicographic) order.
func (s *Store) Suggest(ctx context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error) {
	var keyPrefix string
	switch kind {
	case model.SuggestDomain:
		keyPrefix = domainPrefix
	case model.SuggestTag:
		keyPrefix = tagPrefix
	default:
		return nil, fmt.Errorf("unknown suggestion kind %q", kind)
	}

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix + prefix),
		UpperBound: prefixUpperBound(keyPrefix + prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %q suggestions: %w", kind, err)
	}
	defer it.Close() //nolint:errcheck

	var out []string
	for it.First(); it.Valid() && len(out) < limit; it.Next() {
		out = append(out, stripKeyType(string(it.Key())))
	}
	return out, it.Error()
}
