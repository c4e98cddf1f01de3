package tablestore

import (
	"context"
	"errors"
	"math"
	"regexp"
	"testing"

	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/searchengine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func testRequest() model.IndexRequest {
	return model.IndexRequest{
		Content: model.PageContent{
			URL:      "https://www.example.com/animals/foxes?utm=1",
			Title:    "Fox Facts",
			FullText: "wild foxes roam the northern forests",
		},
		VisitTimes: []int64{1000, 2000},
		Bookmark:   3000,
		Tags:       []string{"nature"},
		FavIcon:    "data:image/png;base64,AAA",
	}
}

func TestStoreUpgradeIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	var version int
	err = s.db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version)
	if err != nil {
		t.Fatalf("failed to read schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version: got %d, want 2", version)
	}

	var migrations int
	err = s.db.QueryRow("SELECT COUNT(*) FROM schema_data_migrations").Scan(&migrations)
	if err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if migrations != 1 {
		t.Errorf("applied migrations: got %d, want 1", migrations)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Reopening must not re-apply versions or migrations.
	s2, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s2.Close() //nolint:errcheck

	var versions int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM schema_versions").Scan(&versions)
	if err != nil {
		t.Fatalf("failed to count schema versions: %v", err)
	}
	if versions != 2 {
		t.Errorf("schema version rows after reopen: got %d, want 2", versions)
	}
}

func TestStoreAddPage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddPage(ctx, testRequest()); err != nil {
		t.Fatalf("failed to add page: %v", err)
	}

	tests := []struct {
		name string
		kind searchengine.TermKind
		term string
	}{
		{name: "content term", kind: searchengine.TermContent, term: "foxes"},
		{name: "title term", kind: searchengine.TermTitle, term: "fox"},
		{name: "url term", kind: searchengine.TermURL, term: "animals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := s.TermMatches(ctx, tt.kind, tt.term)
			if err != nil {
				t.Fatalf("failed to match term: %v", err)
			}
			if len(matches) != 1 || matches[0].PageID != "example.com/animals/foxes" {
				t.Fatalf("matches: got %+v, want the indexed page", matches)
			}
			if matches[0].Latest != 3000 {
				t.Errorf("latest: got %d, want 3000", matches[0].Latest)
			}
		})
	}

	docs, err := s.DisplayDocs(ctx, []string{"example.com/animals/foxes"})
	if err != nil {
		t.Fatalf("failed to load display docs: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs: got %d, want 1", len(docs))
	}
	doc := docs[0]
	if doc.Title != "Fox Facts" || !doc.HasBookmark || doc.DisplayTime != 3000 {
		t.Errorf("unexpected display doc: %+v", doc)
	}
	if doc.FavIcon == "" {
		t.Error("favicon not resolved through hostname")
	}
	if len(doc.Tags) != 1 || doc.Tags[0] != "nature" {
		t.Errorf("tags: got %v, want [nature]", doc.Tags)
	}
}

func TestStoreEventOpsRequirePage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() error
	}{
		{name: "visit", op: func() error { return s.AddVisit(ctx, "https://nowhere.test/x", 100, model.VisitInteraction{}) }},
		{name: "bookmark", op: func() error { return s.AddBookmark(ctx, "https://nowhere.test/x", 100) }},
		{name: "tag", op: func() error { return s.AddTag(ctx, "https://nowhere.test/x", "later") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, ErrNoPage) {
				t.Errorf("got %v, want ErrNoPage", err)
			}
		})
	}
}

func TestStoreUpdateVisitInteraction(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddPage(ctx, testRequest()); err != nil {
		t.Fatalf("failed to add page: %v", err)
	}

	in := model.VisitInteraction{Duration: 42, ScrollPx: 800, ScrollPerc: 0.5}
	if err := s.UpdateVisitInteraction(ctx, "https://example.com/animals/foxes", 1000, in); err != nil {
		t.Fatalf("failed to update interaction: %v", err)
	}

	var duration int64
	err := s.db.QueryRow(
		"SELECT duration FROM visits WHERE url = ? AND time = ?",
		"example.com/animals/foxes", int64(1000)).Scan(&duration)
	if err != nil {
		t.Fatalf("failed to read visit: %v", err)
	}
	if duration != 42 {
		t.Errorf("duration: got %d, want 42", duration)
	}

	err = s.UpdateVisitInteraction(ctx, "https://example.com/animals/foxes", 9999, in)
	if !errors.Is(err, ErrNoPage) {
		t.Errorf("update of absent visit: got %v, want ErrNoPage", err)
	}
}

func TestStoreDelBookmarkDeletesOrphan(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	req := testRequest()
	req.VisitTimes = nil
	if err := s.AddPage(ctx, req); err != nil {
		t.Fatalf("failed to add page: %v", err)
	}
	if err := s.DelBookmark(ctx, "https://example.com/animals/foxes"); err != nil {
		t.Fatalf("failed to delete bookmark: %v", err)
	}

	matches, err := s.TermMatches(ctx, searchengine.TermContent, "foxes")
	if err != nil {
		t.Fatalf("failed to match term: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("term index still references deindexed page: %+v", matches)
	}

	docs, err := s.DisplayDocs(ctx, []string{"example.com/animals/foxes"})
	if err != nil {
		t.Fatalf("failed to load display docs: %v", err)
	}
	if len(docs) != 0 {
		t.Error("page without remaining events should have been deleted")
	}
}

func TestStoreDelPagesByPattern(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"https://keep.test/page", "https://drop.test/page"} {
		req := model.IndexRequest{
			Content:    model.PageContent{URL: u, FullText: "body words"},
			VisitTimes: []int64{1000},
		}
		if err := s.AddPage(ctx, req); err != nil {
			t.Fatalf("failed to add page %q: %v", u, err)
		}
	}

	if err := s.DelPagesByPattern(ctx, regexp.MustCompile(`^drop\.`)); err != nil {
		t.Fatalf("failed to delete by pattern: %v", err)
	}

	var urls []string
	err := s.LatestEvents(ctx, 0, math.MaxInt64, func(pageID string, ts int64) bool {
		urls = append(urls, pageID)
		return true
	})
	if err != nil {
		t.Fatalf("failed to walk events: %v", err)
	}
	if len(urls) != 1 || urls[0] != "keep.test/page" {
		t.Errorf("remaining pages: got %v, want [keep.test/page]", urls)
	}
}

func TestStoreImport(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	exp := &model.ExportedPage{
		Page: model.Page{
			URL:       "example.org/articles/tea",
			FullURL:   "https://example.org/articles/tea",
			FullTitle: "Tea Brewing",
			Text:      "steep loose leaves gently",
			Domain:    "example.org",
			Hostname:  "example.org",
		},
		Visits: []model.Visit{
			{URL: "example.org/articles/tea", Time: 5000, VisitInteraction: model.VisitInteraction{Duration: 7}},
		},
		Bookmark: 6000,
		Tags:     []string{"drinks"},
		FavIcon:  "data:image/png;base64,BBB",
	}

	if err := s.Import(ctx, exp); err != nil {
		t.Fatalf("failed to import page: %v", err)
	}
	// Replaying a batch after a crash imports the same page again.
	if err := s.Import(ctx, exp); err != nil {
		t.Fatalf("failed to re-import page: %v", err)
	}

	matches, err := s.TermMatches(ctx, searchengine.TermContent, "leaves")
	if err != nil {
		t.Fatalf("failed to match term: %v", err)
	}
	if len(matches) != 1 || matches[0].Latest != 6000 {
		t.Fatalf("matches: got %+v", matches)
	}

	docs, err := s.DisplayDocs(ctx, []string{"example.org/articles/tea"})
	if err != nil {
		t.Fatalf("failed to load display docs: %v", err)
	}
	if len(docs) != 1 || !docs[0].HasBookmark || docs[0].FavIcon == "" {
		t.Fatalf("display doc after import: %+v", docs)
	}

	var duration int64
	err = s.db.QueryRow(
		"SELECT duration FROM visits WHERE url = ?", "example.org/articles/tea").Scan(&duration)
	if err != nil {
		t.Fatalf("failed to read visit: %v", err)
	}
	if duration != 7 {
		t.Errorf("interaction not imported: duration %d", duration)
	}
}

func TestStoreSuggest(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	req := testRequest()
	req.Tags = []string{"nature", "night", "travel"}
	if err := s.AddPage(ctx, req); err != nil {
		t.Fatalf("failed to add page: %v", err)
	}

	tags, err := s.Suggest(ctx, model.SuggestTag, "na", 10)
	if err != nil {
		t.Fatalf("failed to suggest tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "nature" {
		t.Errorf("tag suggestions: got %v, want [nature]", tags)
	}

	domains, err := s.Suggest(ctx, model.SuggestDomain, "ex", 10)
	if err != nil {
		t.Fatalf("failed to suggest domains: %v", err)
	}
	if len(domains) != 1 || domains[0] != "example.com" {
		t.Errorf("domain suggestions: got %v, want [example.com]", domains)
	}
}
