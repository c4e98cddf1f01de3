package schema

import (
	"context"
	"database/sql"
	"testing"
)

func stringField() Field { return Field{Type: FieldString} }

// TestComputeVersionsOrdering tests grouping and ascending sort by
// version timestamp.
func TestComputeVersionsOrdering(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterCollection("pages", Collection{
		Version: 100,
		Fields:  map[string]Field{"url": stringField()},
		Indices: []Index{{Fields: []string{"url"}, PK: true}},
	})
	r.RegisterCollection("visits", Collection{
		Version: 200,
		Fields:  map[string]Field{"url": stringField(), "time": {Type: FieldTimestamp}},
		Indices: []Index{{Fields: []string{"time", "url"}, PK: true}},
	})

	steps := r.ComputeVersions()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	if steps[0].Version != 1 || steps[1].Version != 2 {
		t.Errorf("expected ordinals 1,2 got %d,%d", steps[0].Version, steps[1].Version)
	}

	// Step 1 knows only pages; step 2 is the cumulative union.
	if _, ok := steps[0].Collections["visits"]; ok {
		t.Error("step 1 should not contain visits yet")
	}
	if _, ok := steps[1].Collections["pages"]; !ok {
		t.Error("step 2 should still contain pages (schema is cumulative)")
	}
	if _, ok := steps[1].Collections["visits"]; !ok {
		t.Error("step 2 should contain visits")
	}
}

// TestComputeVersionsEvolution tests that a later definition of a
// collection supersedes the earlier one from its step onward.
func TestComputeVersionsEvolution(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterCollection("pages",
		Collection{
			Version: 100,
			Fields:  map[string]Field{"url": stringField()},
			Indices: []Index{{Fields: []string{"url"}, PK: true}},
		},
		Collection{
			Version: 300,
			Fields: map[string]Field{
				"url":      stringField(),
				"hostname": stringField(),
			},
			Indices: []Index{
				{Fields: []string{"url"}, PK: true},
				{Fields: []string{"hostname"}},
			},
		},
	)

	steps := r.ComputeVersions()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}

	if _, ok := steps[0].Collections["pages"].Fields["hostname"]; ok {
		t.Error("step 1 should use the version-100 definition")
	}
	if _, ok := steps[1].Collections["pages"].Fields["hostname"]; !ok {
		t.Error("step 2 should use the version-300 definition")
	}
}

// TestMigrationDedupByID tests that one migration shared by several
// registrations runs at most once across the computed sequence.
func TestMigrationDedupByID(t *testing.T) {
	t.Parallel()

	shared := &Migration{
		ID:  "2019-01-unify-tags",
		Run: func(context.Context, *sql.Tx) error { return nil },
	}

	r := NewRegistry()
	r.RegisterCollection("tags", Collection{
		Version:   200,
		Fields:    map[string]Field{"name": stringField(), "url": stringField()},
		Indices:   []Index{{Fields: []string{"name", "url"}, PK: true}},
		Migration: shared,
	})
	r.RegisterCollection("pages", Collection{
		Version:   200,
		Fields:    map[string]Field{"url": stringField()},
		Indices:   []Index{{Fields: []string{"url"}, PK: true}},
		Migration: shared,
	})

	steps := r.ComputeVersions()

	total := 0
	for _, step := range steps {
		total += len(step.Migrations)
	}
	if total != 1 {
		t.Errorf("shared migration should appear exactly once, got %d", total)
	}
}

// TestSameVersionLastWriteWins tests overwrite behavior for duplicate
// version timestamps of one collection.
func TestSameVersionLastWriteWins(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.RegisterCollection("pages", Collection{
		Version: 100,
		Fields:  map[string]Field{"url": stringField()},
		Indices: []Index{{Fields: []string{"url"}, PK: true}},
	})
	r.RegisterCollection("pages", Collection{
		Version: 100,
		Fields:  map[string]Field{"url": stringField(), "lang": stringField()},
		Indices: []Index{{Fields: []string{"url"}, PK: true}},
	})

	steps := r.ComputeVersions()
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	if _, ok := steps[0].Collections["pages"].Fields["lang"]; !ok {
		t.Error("last registration at a version timestamp should win")
	}
}

// TestCollectionPK tests primary-key lookup.
func TestCollectionPK(t *testing.T) {
	t.Parallel()

	c := Collection{Indices: []Index{
		{Fields: []string{"name"}},
		{Fields: []string{"time", "url"}, PK: true},
	}}

	pk := c.PK()
	if pk == nil {
		t.Fatal("expected a primary key index")
	}
	if len(pk.Fields) != 2 || pk.Fields[0] != "time" {
		t.Errorf("unexpected PK: %+v", pk)
	}

	if (Collection{}).PK() != nil {
		t.Error("collection without PK should return nil")
	}
}
