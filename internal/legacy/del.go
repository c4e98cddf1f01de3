package legacy

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cockroachdb/pebble"
	"golang.org/x/sync/errgroup"

	"github.com/yomogi/pagestash/internal/textproc"
)

// DelPages removes the given pages and every index entry referencing
// them. URLs with no page record are skipped silently so that bulk
// deletes keep going.
func (s *Store) DelPages(ctx context.Context, rawURLs []string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	for _, raw := range rawURLs {
		pageID := textproc.NormalizeURL(raw).Key
		if err := s.deindexPage(ctx, pageID); err != nil {
			return err
		}
	}
	return nil
}

// DelPagesByDomain removes every page of the given registrable domain.
func (s *Store) DelPagesByDomain(ctx context.Context, domain string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var val indexValue
	found, err := s.getJSON(domainKey(domain), &val)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	for pageID := range val {
		if err := s.deindexPage(ctx, pageID); err != nil {
			return err
		}
	}
	return nil
}

// DelPagesByPattern removes every page whose normalized URL matches re.
// The page keyspace is scanned once; matching is on the page identity, not
// the display URL.
func (s *Store) DelPagesByPattern(ctx context.Context, re *regexp.Regexp) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pagePrefix),
		UpperBound: prefixUpperBound(pagePrefix),
	})
	if err != nil {
		return fmt.Errorf("failed to scan pages: %w", err)
	}

	var matched []string
	for it.First(); it.Valid(); it.Next() {
		pageID := stripKeyType(string(it.Key()))
		if re.MatchString(pageID) {
			matched = append(matched, pageID)
		}
	}
	if err := it.Close(); err != nil {
		return err
	}

	for _, pageID := range matched {
		if err := s.deindexPage(ctx, pageID); err != nil {
			return err
		}
	}
	return nil
}

// DelBookmark removes a page's bookmark. If that leaves the page with no
// visits either, the page is orphaned and fully deindexed.
func (s *Store) DelBookmark(ctx context.Context, rawURL string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil || doc == nil {
		return err
	}

	batch := s.db.NewBatch()
	for key := range doc.Bookmarks {
		if err := batch.Delete([]byte(key), nil); err != nil {
			return err
		}
		delete(doc.Bookmarks, key)
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to delete bookmark entries: %w", err)
	}

	doc.refreshLatest()

	if doc.isOrphaned() {
		return s.deindexPage(ctx, pageID)
	}
	return s.putDoc(doc)
}

// DelVisit removes one visit event from a page. Removing the last visit
// of an unbookmarked page orphans and deletes the page.
func (s *Store) DelVisit(ctx context.Context, rawURL string, ts int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil || doc == nil {
		return err
	}

	key := visitKey(ts)
	if !doc.Visits.Has(key) {
		return nil
	}
	delete(doc.Visits, key)

	batch := s.db.NewBatch()
	if err := batch.Delete([]byte(key), nil); err != nil {
		return err
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to delete visit entry: %w", err)
	}

	doc.refreshLatest()

	if doc.isOrphaned() {
		return s.deindexPage(ctx, pageID)
	}
	return s.putDoc(doc)
}

// DelTag removes a tag from a page and the page's entry from the tag
// index, deleting the tag key entirely once no pages reference it.
func (s *Store) DelTag(ctx context.Context, rawURL, name string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil || doc == nil {
		return err
	}

	delete(doc.Tags, tagKey(name))

	if err := s.reduceIndexEntries(tagPrefix, []string{tagKey(name)}, pageID); err != nil {
		return err
	}
	return s.putDoc(doc)
}

// deindexPage reverses AddPage exactly: it removes the page document, its
// timestamp entries, and the page's entry from every term, domain, and tag
// index value it referenced, deleting values that become empty. Missing
// pages are a no-op.
//
// Caller must hold opMu.
func (s *Store) deindexPage(ctx context.Context, pageID string) error {
	doc, err := s.getDoc(pageID)
	if err != nil {
		return err
	}
	if doc == nil {
		s.logger.Debug("skipping deindex of unknown page", "page", pageID)
		return nil
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error { return s.reduceIndexEntries(termPrefix, doc.Terms.Slice(), pageID) })
	g.Go(func() error { return s.reduceIndexEntries(titlePrefix, doc.TitleTerms.Slice(), pageID) })
	g.Go(func() error { return s.reduceIndexEntries(urlPrefix, doc.URLTerms.Slice(), pageID) })
	g.Go(func() error {
		return s.reduceIndexEntries(domainPrefix, []string{domainKey(doc.Page.Domain)}, pageID)
	})
	g.Go(func() error { return s.reduceIndexEntries(tagPrefix, doc.Tags.Slice(), pageID) })
	g.Go(func() error {
		batch := s.db.NewBatch()
		for key := range doc.Visits {
			if err := batch.Delete([]byte(key), nil); err != nil {
				return err
			}
		}
		for key := range doc.Bookmarks {
			if err := batch.Delete([]byte(key), nil); err != nil {
				return err
			}
		}
		if err := batch.Delete([]byte(pageKey(pageID)), nil); err != nil {
			return err
		}
		return s.commit(batch)
	})

	return g.Wait()
}

// reduceIndexEntries removes pageID from the index value of every key,
// deleting keys whose value maps become empty so no zero-length orphan
// entries remain. Keys may be given bare or fully prefixed.
func (s *Store) reduceIndexEntries(prefix string, keys []string, pageID string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			full[i] = k
		} else {
			full[i] = prefix + k
		}
	}

	values, err := s.lookupValues(prefix, full)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	for key, val := range values {
		if val == nil {
			continue
		}
		delete(val, pageID)
		if len(val) == 0 {
			if err := batch.Delete([]byte(key), nil); err != nil {
				return err
			}
			continue
		}
		if err := setJSON(batch, key, val); err != nil {
			return err
		}
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to reduce %q index: %w", prefix, err)
	}
	return nil
}
