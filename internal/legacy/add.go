package legacy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/textproc"
)

// AddPage indexes a page's content plus any associated visit, bookmark,
// and tag events in one logical operation.
//
// The reverse index document write lands first; the side-index updates
// (term-type indexes, timestamp entries, domain entry, tag entries) read
// the document's new latest value and run concurrently afterwards, as they
// touch disjoint key ranges.
func (s *Store) AddPage(ctx context.Context, req model.IndexRequest) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	page, terms := textproc.PageFromContent(req.Content)
	if req.Screenshot != "" {
		page.Screenshot = req.Screenshot
	}

	doc, err := s.getDoc(page.URL)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = newReverseIndexDoc(page)
	} else {
		// Merge new content into the existing document; term sets only
		// ever grow, display data takes the newest non-empty values.
		doc.Page.FullURL = page.FullURL
		if page.FullTitle != "" {
			doc.Page.FullTitle = page.FullTitle
		}
		if page.Text != "" {
			doc.Page.Text = page.Text
		}
		if page.Screenshot != "" {
			doc.Page.Screenshot = page.Screenshot
		}
	}
	doc.Terms.Merge(terms.Terms)
	doc.TitleTerms.Merge(terms.TitleTerms)
	doc.URLTerms.Merge(terms.URLTerms)
	if req.FavIcon != "" {
		doc.FavIcon = req.FavIcon
	}

	newVisits := make([]int64, 0, len(req.VisitTimes))
	for _, ts := range req.VisitTimes {
		key := visitKey(ts)
		if !doc.Visits.Has(key) {
			doc.Visits.Add(key)
			newVisits = append(newVisits, ts)
		}
	}

	var newBookmark int64
	if req.Bookmark != 0 {
		key := bookmarkKey(req.Bookmark)
		if !doc.Bookmarks.Has(key) {
			doc.Bookmarks.Add(key)
			newBookmark = req.Bookmark
		}
	}

	newTags := make([]string, 0, len(req.Tags))
	for _, name := range req.Tags {
		key := tagKey(name)
		if !doc.Tags.Has(key) {
			doc.Tags.Add(key)
			newTags = append(newTags, name)
		}
	}

	doc.refreshLatest()

	if err := s.putDoc(doc); err != nil {
		return err
	}

	return s.indexSides(ctx, doc, newVisits, newBookmark, newTags)
}

// putDoc writes the reverse index document in its own committed batch.
func (s *Store) putDoc(doc *ReverseIndexDoc) error {
	batch := s.db.NewBatch()
	if err := setJSON(batch, pageKey(doc.Page.URL), doc); err != nil {
		return err
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to write page document: %w", err)
	}
	return nil
}

// indexSides runs the side-index updates of an add concurrently. Each
// group owns a disjoint key range, so there is no ordering dependency
// between them.
func (s *Store) indexSides(ctx context.Context, doc *ReverseIndexDoc, newVisits []int64, newBookmark int64, newTags []string) error {
	g, _ := errgroup.WithContext(ctx)
	pageID := doc.Page.URL
	latest := doc.Latest

	g.Go(func() error { return s.mergeIndexEntries(termPrefix, doc.Terms.Slice(), pageID, latest) })
	g.Go(func() error { return s.mergeIndexEntries(titlePrefix, doc.TitleTerms.Slice(), pageID, latest) })
	g.Go(func() error { return s.mergeIndexEntries(urlPrefix, doc.URLTerms.Slice(), pageID, latest) })
	g.Go(func() error {
		return s.mergeIndexEntries(domainPrefix, []string{doc.Page.Domain}, pageID, latest)
	})
	g.Go(func() error { return s.mergeIndexEntries(tagPrefix, newTags, pageID, latest) })
	g.Go(func() error { return s.writeTimestamps(pageID, newVisits, newBookmark) })

	return g.Wait()
}

// mergeIndexEntries merges {pageID: {latest}} into the index value of
// every given bare key under prefix, creating values as needed.
func (s *Store) mergeIndexEntries(prefix string, bareKeys []string, pageID string, latest int64) error {
	if len(bareKeys) == 0 {
		return nil
	}

	keys := make([]string, len(bareKeys))
	for i, k := range bareKeys {
		keys[i] = prefix + k
	}

	values, err := s.lookupValues(prefix, keys)
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	for key, val := range values {
		if val == nil {
			val = make(indexValue, 1)
		}
		val[pageID] = indexEntry{Latest: latest}
		if err := setJSON(batch, key, val); err != nil {
			return err
		}
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to update %q index: %w", prefix, err)
	}
	return nil
}

// writeTimestamps writes the visit and bookmark event entries introduced
// by one add operation.
func (s *Store) writeTimestamps(pageID string, visits []int64, bookmark int64) error {
	if len(visits) == 0 && bookmark == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, ts := range visits {
		if err := setJSON(batch, visitKey(ts), timestampValue{PageID: pageID}); err != nil {
			return err
		}
	}
	if bookmark != 0 {
		if err := setJSON(batch, bookmarkKey(bookmark), timestampValue{PageID: pageID}); err != nil {
			return err
		}
	}
	if err := s.commit(batch); err != nil {
		return fmt.Errorf("failed to write timestamp entries: %w", err)
	}
	return nil
}

// AddVisit records a visit for an already-indexed page. Visiting a URL
// with no page record is a hard error; the caller is expected to have
// created the page first.
func (s *Store) AddVisit(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot add visit for %q: %w", rawURL, ErrNoPage)
	}

	doc.Visits.Add(visitKey(ts))
	doc.refreshLatest()

	if err := s.putDoc(doc); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	if err := setJSON(batch, visitKey(ts), timestampValue{PageID: pageID, Interaction: interaction}); err != nil {
		return err
	}
	return s.commit(batch)
}

// AddBookmark records a bookmark for an already-indexed page.
func (s *Store) AddBookmark(ctx context.Context, rawURL string, ts int64) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot bookmark %q: %w", rawURL, ErrNoPage)
	}

	doc.Bookmarks.Add(bookmarkKey(ts))
	doc.refreshLatest()

	if err := s.putDoc(doc); err != nil {
		return err
	}

	batch := s.db.NewBatch()
	if err := setJSON(batch, bookmarkKey(ts), timestampValue{PageID: pageID}); err != nil {
		return err
	}
	return s.commit(batch)
}

// AddTag associates a tag name with an already-indexed page.
func (s *Store) AddTag(ctx context.Context, rawURL, name string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key
	doc, err := s.getDoc(pageID)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("cannot tag %q: %w", rawURL, ErrNoPage)
	}

	doc.Tags.Add(tagKey(name))

	if err := s.putDoc(doc); err != nil {
		return err
	}
	return s.mergeIndexEntries(tagPrefix, []string{name}, pageID, doc.Latest)
}

// UpdateVisitInteraction attaches activity metrics to an existing visit.
// The visit's page association cannot be overwritten.
func (s *Store) UpdateVisitInteraction(ctx context.Context, rawURL string, ts int64, interaction model.VisitInteraction) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	pageID := textproc.NormalizeURL(rawURL).Key

	var val timestampValue
	found, err := s.getJSON(visitKey(ts), &val)
	if err != nil {
		return err
	}
	if !found || val.PageID != pageID {
		return fmt.Errorf("no visit of %q at %d: %w", rawURL, ts, ErrNoPage)
	}

	val.Interaction = interaction

	batch := s.db.NewBatch()
	if err := setJSON(batch, visitKey(ts), val); err != nil {
		return err
	}
	return s.commit(batch)
}
