package stash

import (
	"context"
	"testing"

	"github.com/yomogi/pagestash/internal/legacy"
	"github.com/yomogi/pagestash/internal/migrate"
	"github.com/yomogi/pagestash/internal/model"
	"github.com/yomogi/pagestash/internal/settings"
	"github.com/yomogi/pagestash/internal/tablestore"
)

func newTestStash(t *testing.T, set settings.Store) *Stash {
	t.Helper()

	leg, err := legacy.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open legacy store: %v", err)
	}
	tab, err := tablestore.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to open table store: %v", err)
	}

	s, err := New(leg, tab, set, nil)
	if err != nil {
		t.Fatalf("failed to create stash: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStashDefaultsToLegacy(t *testing.T) {
	t.Parallel()

	s := newTestStash(t, settings.NewMemStore())
	if s.Handle() != HandleLegacy {
		t.Errorf("handle: got %v, want legacy", s.Handle())
	}
}

func TestStashOperationsThroughActiveBackend(t *testing.T) {
	t.Parallel()

	s := newTestStash(t, settings.NewMemStore())
	ctx := context.Background()

	err := s.AddPage(ctx, model.IndexRequest{
		Content: model.PageContent{
			URL:      "https://example.com/notes",
			Title:    "Notes",
			FullText: "scattered thoughts about gardening",
		},
		VisitTimes: []int64{1000},
	})
	if err != nil {
		t.Fatalf("failed to add page: %v", err)
	}
	if err := s.AddTag(ctx, "https://example.com/notes", "garden"); err != nil {
		t.Fatalf("failed to tag page: %v", err)
	}

	res, err := s.Search(ctx, model.SearchParams{Terms: []string{"gardening"}})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0].Title != "Notes" {
		t.Fatalf("search result: %+v", res)
	}

	tags, err := s.Suggest(ctx, model.SuggestTag, "gar", 5)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if len(tags) != 1 || tags[0] != "garden" {
		t.Errorf("suggestions: got %v, want [garden]", tags)
	}
}

func TestStashMigrationFlipsOnNextStartup(t *testing.T) {
	t.Parallel()

	set := settings.NewMemStore()
	s := newTestStash(t, set)
	ctx := context.Background()

	err := s.AddPage(ctx, model.IndexRequest{
		Content: model.PageContent{
			URL:      "https://example.com/bread",
			Title:    "Bread",
			FullText: "sourdough needs a lively starter",
		},
		VisitTimes: []int64{1000},
	})
	if err != nil {
		t.Fatalf("failed to add page: %v", err)
	}

	outcome, err := s.StartMigration(ctx, 2)
	if err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	if outcome != migrate.OutcomeFinished {
		t.Fatalf("outcome: got %q, want finished", outcome)
	}

	// The handle is resolved at startup only: the running stash keeps
	// its legacy handle, the next one sees the structured backend.
	if s.Handle() != HandleLegacy {
		t.Errorf("running handle changed mid-process: %v", s.Handle())
	}

	s2 := newTestStash(t, set)
	if s2.Handle() != HandleStructured {
		t.Fatalf("handle after migration: got %v, want structured", s2.Handle())
	}
	if state, _ := s2.MigrationState(); state != migrate.StateFinished {
		t.Errorf("migration state: got %q, want finished", state)
	}
}
