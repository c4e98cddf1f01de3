package schema

import (
	"context"
	"database/sql"
	"sort"
)

// FieldType enumerates the storable field types of a collection.
type FieldType string

// Supported field types. Text fields are the only ones eligible for
// full-text (term set) indexing.
const (
	FieldString    FieldType = "string"
	FieldText      FieldType = "text"
	FieldURL       FieldType = "url"
	FieldTimestamp FieldType = "timestamp"
	FieldInt       FieldType = "int"
	FieldFloat     FieldType = "float"
	FieldBlob      FieldType = "blob"
)

// Field describes one field of a collection.
type Field struct {
	// Type is the storage type of the field.
	Type FieldType
}

// Index describes one index of a collection. Compound indexes list their
// fields in order.
type Index struct {
	// Fields are the indexed field names, in index order.
	Fields []string

	// PK marks this index as the primary key of the collection.
	PK bool

	// FullTextIndexName requests a materialized term-set index for a
	// single Text or URL field. The terms are extracted at write time by
	// the text pipeline and stored under this name.
	FullTextIndexName string
}

// Migration is a data migration attached to a collection definition. It
// runs inside the upgrade transaction of the schema version that
// introduces it.
//
// Migrations are deduplicated by ID, not by identity: the same Migration
// value may be attached to several registrations (a migration touching
// multiple collections) and still runs at most once.
type Migration struct {
	// ID uniquely identifies the migration across the whole registry.
	ID string

	// Run performs the migration inside the upgrade transaction.
	Run func(ctx context.Context, tx *sql.Tx) error
}

// Collection is one versioned definition of a collection.
type Collection struct {
	// Name of the collection. Set by RegisterCollection.
	Name string

	// Version is the definition's version timestamp (Unix milliseconds).
	// Later timestamps supersede earlier ones for the same collection.
	Version int64

	// Fields maps field names to their definitions.
	Fields map[string]Field

	// Indices lists the collection's indexes, including the primary key.
	Indices []Index

	// Migration optionally transforms existing data when this version
	// becomes active.
	Migration *Migration
}

// PK returns the primary-key index of the collection, or nil if none is
// declared.
func (c Collection) PK() *Index {
	for i := range c.Indices {
		if c.Indices[i].PK {
			return &c.Indices[i]
		}
	}
	return nil
}

// VersionStep is one physical schema version the table engine steps
// through during initialization.
type VersionStep struct {
	// Version is the 1-based ordinal of the step.
	Version int

	// Collections holds, per collection name, the newest definition
	// whose version timestamp is within this step (cumulative union of
	// everything registered so far).
	Collections map[string]Collection

	// Migrations are the data migrations to run during this step's
	// upgrade, already deduplicated by ID across the whole sequence.
	Migrations []*Migration
}

// Registry collects versioned collection definitions.
type Registry struct {
	defs map[string][]Collection
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string][]Collection)}
}

// RegisterCollection registers one or more versioned definitions for the
// named collection. Registering two definitions of one collection with the
// same version timestamp makes the last registration win; registering a
// version older than an existing one is not diagnosed.
func (r *Registry) RegisterCollection(name string, defs ...Collection) {
	for _, def := range defs {
		def.Name = name
		r.defs[name] = append(r.defs[name], def)
	}
}

// ComputeVersions groups all registered definitions by version timestamp,
// sorts ascending, and emits the resulting physical schema sequence. Each
// step's schema is the union of all collections known up to that step; a
// migration runs in the step its definition first appears in and never
// again (dedup by Migration.ID).
func (r *Registry) ComputeVersions() []VersionStep {
	// Collect the distinct version timestamps.
	stampSet := make(map[int64]struct{})
	for _, defs := range r.defs {
		for _, def := range defs {
			stampSet[def.Version] = struct{}{}
		}
	}
	stamps := make([]int64, 0, len(stampSet))
	for s := range stampSet {
		stamps = append(stamps, s)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })

	seenMigrations := make(map[string]bool)
	steps := make([]VersionStep, 0, len(stamps))

	for i, stamp := range stamps {
		step := VersionStep{
			Version:     i + 1,
			Collections: make(map[string]Collection),
		}

		for name, defs := range r.defs {
			current, ok := latestAt(defs, stamp)
			if !ok {
				continue
			}
			step.Collections[name] = current

			// Only the definition introduced exactly at this stamp can
			// contribute its migration.
			if current.Version == stamp && current.Migration != nil &&
				!seenMigrations[current.Migration.ID] {
				seenMigrations[current.Migration.ID] = true
				step.Migrations = append(step.Migrations, current.Migration)
			}
		}

		// Keep migration order stable across runs.
		sort.Slice(step.Migrations, func(a, b int) bool {
			return step.Migrations[a].ID < step.Migrations[b].ID
		})

		steps = append(steps, step)
	}

	return steps
}

// latestAt returns the newest definition with Version <= stamp. Among
// definitions sharing the same version timestamp the last registered wins.
func latestAt(defs []Collection, stamp int64) (Collection, bool) {
	var (
		best  Collection
		found bool
	)
	for _, def := range defs {
		if def.Version > stamp {
			continue
		}
		if !found || def.Version >= best.Version {
			best = def
			found = true
		}
	}
	return best, found
}
