package searchengine

import (
	"context"
	"testing"

	"github.com/yomogi/pagestash/internal/model"
)

// fakeSource is an in-memory Source for exercising engine semantics
// without a storage backend.
type fakeSource struct {
	terms     map[TermKind]map[string][]TermMatch
	domains   map[string][]string
	tags      map[string][]string
	events    []fakeEvent // newest first
	bookmarks map[string]bool
}

type fakeEvent struct {
	pageID string
	ts     int64
}

func (f *fakeSource) TermMatches(_ context.Context, kind TermKind, term string) ([]TermMatch, error) {
	return f.terms[kind][term], nil
}

func (f *fakeSource) DomainMatches(_ context.Context, domain string) ([]string, error) {
	return f.domains[domain], nil
}

func (f *fakeSource) TagMatches(_ context.Context, tag string) ([]string, error) {
	return f.tags[tag], nil
}

func (f *fakeSource) LatestEvents(_ context.Context, start, end int64, fn func(string, int64) bool) error {
	for _, ev := range f.events {
		if ev.ts < start || ev.ts > end {
			continue
		}
		if !fn(ev.pageID, ev.ts) {
			return nil
		}
	}
	return nil
}

func (f *fakeSource) Bookmarked(_ context.Context, pageIDs []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range pageIDs {
		if f.bookmarks[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeSource) DisplayDocs(_ context.Context, pageIDs []string) ([]model.SearchDoc, error) {
	out := make([]model.SearchDoc, 0, len(pageIDs))
	for _, id := range pageIDs {
		out = append(out, model.SearchDoc{URL: id, HasBookmark: f.bookmarks[id]})
	}
	return out, nil
}

func (f *fakeSource) Suggest(_ context.Context, kind model.SuggestKind, prefix string, limit int) ([]string, error) {
	return nil, nil
}

func docURLs(res *model.SearchResult) []string {
	out := make([]string, len(res.Docs))
	for i, d := range res.Docs {
		out[i] = d.URL
	}
	return out
}

func wantURLs(t *testing.T, res *model.SearchResult, want ...string) {
	t.Helper()
	got := docURLs(res)
	if len(got) != len(want) {
		t.Fatalf("result URLs: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result URLs: got %v, want %v", got, want)
		}
	}
}

func TestEngineTermIntersection(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		terms: map[TermKind]map[string][]TermMatch{
			TermContent: {
				"fox": {{PageID: "a", Latest: 100}, {PageID: "b", Latest: 200}},
				"dog": {{PageID: "b", Latest: 200}, {PageID: "c", Latest: 300}},
			},
		},
	}
	e := New(src, nil)

	res, err := e.Search(context.Background(), model.SearchParams{Terms: []string{"fox", "dog"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	// Only b matches both terms.
	wantURLs(t, res, "b")
	if res.TotalCount != 1 {
		t.Errorf("total count: got %d, want 1", res.TotalCount)
	}
}

func TestEngineTermExclusion(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		terms: map[TermKind]map[string][]TermMatch{
			TermContent: {
				"fox": {{PageID: "a", Latest: 100}, {PageID: "b", Latest: 200}},
				"dog": {{PageID: "b", Latest: 200}},
			},
		},
	}
	e := New(src, nil)

	res, err := e.Search(context.Background(), model.SearchParams{
		Terms:        []string{"fox"},
		TermsExclude: []string{"dog"},
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "a")
}

func TestEngineMultipliers(t *testing.T) {
	t.Parallel()

	// Both pages share the latest timestamp; the title match must
	// outrank the body match.
	src := &fakeSource{
		terms: map[TermKind]map[string][]TermMatch{
			TermContent: {"fox": {{PageID: "body", Latest: 1000}}},
			TermTitle:   {"fox": {{PageID: "titled", Latest: 1000}}},
		},
	}
	e := New(src, nil)

	res, err := e.Search(context.Background(), model.SearchParams{Terms: []string{"fox"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "titled", "body")
}

func TestEngineBadTerm(t *testing.T) {
	t.Parallel()

	e := New(&fakeSource{}, nil)

	// Stopwords only: nothing can ever match this query.
	res, err := e.Search(context.Background(), model.SearchParams{Terms: []string{"the", "of"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !res.IsBadTerm {
		t.Error("IsBadTerm not set for stopword-only query")
	}
	if !res.ResultsExhausted || len(res.Docs) != 0 {
		t.Errorf("bad term result not empty: %+v", res)
	}
}

func TestEnginePagination(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		events: []fakeEvent{
			{pageID: "e", ts: 500},
			{pageID: "d", ts: 400},
			{pageID: "c", ts: 300},
			{pageID: "b", ts: 200},
			{pageID: "a", ts: 100},
		},
	}
	e := New(src, nil)
	ctx := context.Background()

	first, err := e.Search(ctx, model.SearchParams{Limit: 2})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, first, "e", "d")
	if first.ResultsExhausted {
		t.Error("first window reported exhausted with more pages remaining")
	}

	last, err := e.Search(ctx, model.SearchParams{Skip: 4, Limit: 2})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, last, "a")
	if !last.ResultsExhausted {
		t.Error("final window not reported exhausted")
	}
}

func TestEngineDomainAndTagFilters(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		events: []fakeEvent{
			{pageID: "a", ts: 300},
			{pageID: "b", ts: 200},
			{pageID: "c", ts: 100},
		},
		domains: map[string][]string{
			"one.test": {"a", "b"},
			"two.test": {"c"},
		},
		tags: map[string][]string{
			"keep": {"b", "c"},
		},
	}
	e := New(src, nil)
	ctx := context.Background()

	res, err := e.Search(ctx, model.SearchParams{
		Domains: []string{"one.test"},
		Tags:    []string{"keep"},
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "b")

	res, err = e.Search(ctx, model.SearchParams{DomainsExclude: []string{"one.test"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "c")
}

func TestEngineBookmarksOnly(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		events: []fakeEvent{
			{pageID: "a", ts: 300},
			{pageID: "b", ts: 200},
		},
		bookmarks: map[string]bool{"b": true},
	}
	e := New(src, nil)

	res, err := e.Search(context.Background(), model.SearchParams{BookmarksOnly: true})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "b")
}

func TestEngineDateBounds(t *testing.T) {
	t.Parallel()

	src := &fakeSource{
		events: []fakeEvent{
			{pageID: "new", ts: 900},
			{pageID: "mid", ts: 500},
			{pageID: "old", ts: 100},
		},
	}
	e := New(src, nil)

	res, err := e.Search(context.Background(), model.SearchParams{StartDate: 200, EndDate: 800})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	wantURLs(t, res, "mid")
}
