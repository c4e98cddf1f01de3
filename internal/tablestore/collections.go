package tablestore

import (
	"context"
	"database/sql"

	"github.com/yomogi/pagestash/internal/schema"
)

// Version timestamps of the canonical schema (Unix milliseconds). New
// collection definitions get a fresh timestamp; the registry groups equal
// timestamps into one physical schema version.
const (
	schemaV1 = int64(1748000000000)
	schemaV2 = int64(1752000000000)
)

// DefaultRegistry returns the canonical collection registry of the
// structured backend.
//
// The visits collection has two definitions: the second adds the
// interaction metrics columns and backfills existing rows with zeroes, so
// databases created before the second version upgrade cleanly.
func DefaultRegistry() *schema.Registry {
	r := schema.NewRegistry()

	r.RegisterCollection("pages", schema.Collection{
		Version: schemaV1,
		Fields: map[string]schema.Field{
			"url":           {Type: schema.FieldURL},
			"full_url":      {Type: schema.FieldURL},
			"full_title":    {Type: schema.FieldText},
			"text":          {Type: schema.FieldText},
			"domain":        {Type: schema.FieldString},
			"hostname":      {Type: schema.FieldString},
			"screenshot":    {Type: schema.FieldBlob},
			"lang":          {Type: schema.FieldString},
			"canonical_url": {Type: schema.FieldURL},
			"description":   {Type: schema.FieldText},
		},
		Indices: []schema.Index{
			{Fields: []string{"url"}, PK: true},
			{Fields: []string{"domain"}},
			{Fields: []string{"text"}, FullTextIndexName: "terms"},
			{Fields: []string{"full_title"}, FullTextIndexName: "title_terms"},
			{Fields: []string{"url"}, FullTextIndexName: "url_terms"},
		},
	})

	r.RegisterCollection("visits",
		schema.Collection{
			Version: schemaV1,
			Fields: map[string]schema.Field{
				"url":  {Type: schema.FieldURL},
				"time": {Type: schema.FieldTimestamp},
			},
			Indices: []schema.Index{
				{Fields: []string{"time", "url"}, PK: true},
				{Fields: []string{"url"}},
			},
		},
		schema.Collection{
			Version: schemaV2,
			Fields: map[string]schema.Field{
				"url":             {Type: schema.FieldURL},
				"time":            {Type: schema.FieldTimestamp},
				"duration":        {Type: schema.FieldInt},
				"scroll_px":       {Type: schema.FieldInt},
				"scroll_perc":     {Type: schema.FieldFloat},
				"scroll_max_px":   {Type: schema.FieldInt},
				"scroll_max_perc": {Type: schema.FieldFloat},
			},
			Indices: []schema.Index{
				{Fields: []string{"time", "url"}, PK: true},
				{Fields: []string{"url"}},
			},
			Migration: &schema.Migration{
				ID: "visits-interaction-defaults",
				Run: func(ctx context.Context, tx *sql.Tx) error {
					_, err := tx.ExecContext(ctx, `
						UPDATE visits SET
							duration = COALESCE(duration, 0),
							scroll_px = COALESCE(scroll_px, 0),
							scroll_perc = COALESCE(scroll_perc, 0),
							scroll_max_px = COALESCE(scroll_max_px, 0),
							scroll_max_perc = COALESCE(scroll_max_perc, 0)`)
					return err
				},
			},
		},
	)

	r.RegisterCollection("bookmarks", schema.Collection{
		Version: schemaV1,
		Fields: map[string]schema.Field{
			"url":  {Type: schema.FieldURL},
			"time": {Type: schema.FieldTimestamp},
		},
		Indices: []schema.Index{
			{Fields: []string{"url"}, PK: true},
			{Fields: []string{"time"}},
		},
	})

	r.RegisterCollection("tags", schema.Collection{
		Version: schemaV1,
		Fields: map[string]schema.Field{
			"name": {Type: schema.FieldString},
			"url":  {Type: schema.FieldURL},
		},
		Indices: []schema.Index{
			{Fields: []string{"name", "url"}, PK: true},
			{Fields: []string{"url"}},
			{Fields: []string{"name"}},
		},
	})

	r.RegisterCollection("fav_icons", schema.Collection{
		Version: schemaV1,
		Fields: map[string]schema.Field{
			"hostname": {Type: schema.FieldString},
			"fav_icon": {Type: schema.FieldBlob},
		},
		Indices: []schema.Index{
			{Fields: []string{"hostname"}, PK: true},
		},
	})

	return r
}
