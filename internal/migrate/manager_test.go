package migrate_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/yomogi/pagestash/internal/legacy"
	"github.com/yomogi/pagestash/internal/migrate"
	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/searchengine"
	"github.com/yomogi/pagestash/internal/settings"
	"github.com/yomogi/pagestash/internal/tablestore"
)

// fakeExporter serves pages from a fixed sorted key list.
type fakeExporter struct {
	keys []string
}

func (f *fakeExporter) PageKeysAfter(_ context.Context, cursor string, limit int) ([]string, error) {
	var out []string
	for _, k := range f.keys {
		if k > cursor && len(out) < limit {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeExporter) ExportPage(_ context.Context, pageID string) (*model.ExportedPage, error) {
	return &model.ExportedPage{
		Page:   model.Page{URL: pageID, FullURL: "https://" + pageID, Text: "body"},
		Visits: []model.Visit{{URL: pageID, Time: 1000}},
	}, nil
}

// recordingImporter counts imports per page and can trigger a callback on
// its first import.
type recordingImporter struct {
	mu      sync.Mutex
	counts  map[string]int
	onFirst func()
}

func (r *recordingImporter) Import(_ context.Context, exp *model.ExportedPage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	if len(r.counts) == 0 && r.onFirst != nil {
		r.onFirst()
	}
	r.counts[exp.Page.URL]++
	return nil
}

func (r *recordingImporter) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

func sortedKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("site%02d.test/page", i)
	}
	sort.Strings(keys)
	return keys
}

func TestManagerResumesWithoutReprocessing(t *testing.T) {
	t.Parallel()

	exp := &fakeExporter{keys: sortedKeys(25)}
	imp := &recordingImporter{}
	set := settings.NewMemStore()

	flips := 0
	mgr := migrate.NewManager(exp, imp, set, nil, func() error {
		flips++
		return nil
	})

	// Request cancellation during the first batch; the manager must
	// observe it at the batch boundary and persist progress.
	imp.onFirst = func() { mgr.Stop() }

	ctx := context.Background()
	outcome, err := mgr.Start(ctx, 2)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if outcome != migrate.OutcomeInterrupted {
		t.Fatalf("first run outcome: got %q, want interrupted", outcome)
	}
	if got := imp.total(); got != 10 {
		t.Fatalf("imports after interruption: got %d, want one full batch of 10", got)
	}
	if state, _ := mgr.State(); state != migrate.StateInterrupted {
		t.Errorf("state after interruption: got %q", state)
	}
	if flips != 0 {
		t.Fatalf("backend flipped before completion: %d flips", flips)
	}

	// Resume: the remaining 15 pages transfer, nothing is re-processed.
	imp.onFirst = nil
	outcome, err = mgr.Start(ctx, 2)
	if err != nil {
		t.Fatalf("resumed run failed: %v", err)
	}
	if outcome != migrate.OutcomeFinished {
		t.Fatalf("resumed run outcome: got %q, want finished", outcome)
	}
	if got := imp.total(); got != 25 {
		t.Errorf("total imports: got %d, want 25 (no re-processing)", got)
	}
	for url, c := range imp.counts {
		if c != 1 {
			t.Errorf("page %q imported %d times", url, c)
		}
	}
	if flips != 1 {
		t.Errorf("backend flips: got %d, want exactly 1", flips)
	}

	// A finished migration never restarts or re-flips.
	outcome, err = mgr.Start(ctx, 2)
	if err != nil {
		t.Fatalf("post-finish run failed: %v", err)
	}
	if outcome != migrate.OutcomeFinished {
		t.Errorf("post-finish outcome: got %q, want finished", outcome)
	}
	if flips != 1 || imp.total() != 25 {
		t.Errorf("finished migration did work again: flips=%d imports=%d", flips, imp.total())
	}
}

// TestManagerRoundTrip migrates a real legacy store into a real table
// store and checks the structured side answers the same queries.
func TestManagerRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	src, err := legacy.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open legacy store: %v", err)
	}
	defer src.Close() //nolint:errcheck

	dst, err := tablestore.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open table store: %v", err)
	}
	defer dst.Close() //nolint:errcheck

	err = src.AddPage(ctx, model.IndexRequest{
		Content: model.PageContent{
			URL:      "https://example.com/guides/soap",
			Title:    "Soap Making",
			FullText: "lye and tallow need patience",
		},
		VisitTimes: []int64{1000},
		Bookmark:   2000,
		Tags:       []string{"crafts"},
		FavIcon:    "data:image/png;base64,CCC",
	})
	if err != nil {
		t.Fatalf("failed to seed legacy store: %v", err)
	}

	mgr := migrate.NewManager(src, dst, settings.NewMemStore(), nil, nil)
	outcome, err := mgr.Start(ctx, 2)
	if err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	if outcome != migrate.OutcomeFinished {
		t.Fatalf("outcome: got %q, want finished", outcome)
	}

	matches, err := dst.TermMatches(ctx, searchengine.TermContent, "tallow")
	if err != nil {
		t.Fatalf("failed to match term: %v", err)
	}
	if len(matches) != 1 || matches[0].PageID != "example.com/guides/soap" {
		t.Fatalf("term matches after migration: %+v", matches)
	}
	if matches[0].Latest != 2000 {
		t.Errorf("latest after migration: got %d, want 2000", matches[0].Latest)
	}

	docs, err := dst.DisplayDocs(ctx, []string{"example.com/guides/soap"})
	if err != nil {
		t.Fatalf("failed to load display docs: %v", err)
	}
	if len(docs) != 1 || !docs[0].HasBookmark || docs[0].FavIcon == "" {
		t.Fatalf("display doc after migration: %+v", docs)
	}
	if len(docs[0].Tags) != 1 || docs[0].Tags[0] != "crafts" {
		t.Errorf("tags after migration: %v", docs[0].Tags)
	}
}
