package legacy

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/pebble"

	"github.com/yomogi/pagestash/internal/model"
)

// PageKeysAfter returns up to limit page IDs strictly greater than the
// cursor, in key order. An empty cursor starts from the beginning. The
// returned slice is empty when the keyspace is exhausted.
func (s *Store) PageKeysAfter(ctx context.Context, cursor string, limit int) ([]string, error) {
	lower := []byte(pagePrefix)
	if cursor != "" {
		// Exclusive lower bound: one byte past the cursor key.
		lower = append([]byte(pageKey(cursor)), 0x00)
	}

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: prefixUpperBound(pagePrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan page keys: %w", err)
	}
	defer it.Close() //nolint:errcheck

	var out []string
	for it.First(); it.Valid() && len(out) < limit; it.Next() {
		out = append(out, stripKeyType(string(it.Key())))
	}
	return out, it.Error()
}

// ExportPage assembles the full portable record for one page: the page
// itself plus every visit, the newest bookmark, tag names, and favicon.
// A missing page returns (nil, nil).
func (s *Store) ExportPage(ctx context.Context, pageID string) (*model.ExportedPage, error) {
	doc, err := s.getDoc(pageID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}

	exp := &model.ExportedPage{
		Page:    doc.Page,
		FavIcon: doc.FavIcon,
	}

	for key := range doc.Visits {
		var val timestampValue
		found, err := s.getJSON(key, &val)
		if err != nil {
			return nil, err
		}
		visit := model.Visit{URL: pageID, Time: timestampOfKey(key)}
		if found {
			visit.VisitInteraction = val.Interaction
		}
		exp.Visits = append(exp.Visits, visit)
	}
	sort.Slice(exp.Visits, func(i, j int) bool { return exp.Visits[i].Time < exp.Visits[j].Time })

	for key := range doc.Bookmarks {
		if ts := timestampOfKey(key); ts > exp.Bookmark {
			exp.Bookmark = ts
		}
	}

	for key := range doc.Tags {
		exp.Tags = append(exp.Tags, stripKeyType(key))
	}
	sort.Strings(exp.Tags)

	return exp, nil
}
