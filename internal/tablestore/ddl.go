package tablestore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yomogi/pagestash/internal/schema"
)

// columnType maps a registry field type to its SQLite storage class.
func columnType(t schema.FieldType) string {
	switch t {
	case schema.FieldInt, schema.FieldTimestamp:
		return "INTEGER"
	case schema.FieldFloat:
		return "REAL"
	case schema.FieldBlob:
		return "BLOB"
	default:
		// String, Text, and URL all store as TEXT.
		return "TEXT"
	}
}

// createTableSQL builds the CREATE TABLE statement for one collection.
// Columns come out in sorted order so the generated DDL is stable.
func createTableSQL(c schema.Collection) string {
	names := make([]string, 0, len(c.Fields))
	for name := range c.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var cols []string
	for _, name := range names {
		cols = append(cols, fmt.Sprintf("%s %s", name, columnType(c.Fields[name].Type)))
	}
	if pk := c.PK(); pk != nil {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk.Fields, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", c.Name, strings.Join(cols, ",\n\t"))
}

// addColumnSQL builds the ALTER statements that bring an existing table
// from a previous definition to the current one. SQLite cannot add
// primary-key columns after the fact, so evolved definitions must keep
// their key; only plain columns may be added.
func addColumnSQL(prev, cur schema.Collection) []string {
	names := make([]string, 0, len(cur.Fields))
	for name := range cur.Fields {
		if _, existed := prev.Fields[name]; !existed {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			cur.Name, name, columnType(cur.Fields[name].Type)))
	}
	return out
}

// indexSQL builds the CREATE INDEX statements for a collection's non-key
// plain indexes. Full-text indexes materialize as side tables instead.
func indexSQL(c schema.Collection) []string {
	var out []string
	for _, idx := range c.Indices {
		if idx.PK || idx.FullTextIndexName != "" {
			continue
		}
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
			c.Name, strings.Join(idx.Fields, "_"), c.Name, strings.Join(idx.Fields, ", ")))
	}
	return out
}

// termTableName returns the side-table name of a full-text index.
func termTableName(collection string, idx schema.Index) string {
	return collection + "_" + idx.FullTextIndexName
}

// termTableSQL builds the side table backing one full-text index: one row
// per (term, primary key) pair, plus a reverse index for deindexing.
func termTableSQL(c schema.Collection, idx schema.Index) []string {
	pk := c.PK()
	if pk == nil || len(pk.Fields) != 1 {
		// Full-text indexes are only defined for single-key collections.
		return nil
	}
	key := pk.Fields[0]
	table := termTableName(c.Name, idx)

	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\tterm TEXT NOT NULL,\n\t%s %s NOT NULL,\n\tPRIMARY KEY (term, %s)\n)",
			table, key, columnType(c.Fields[key].Type), key),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", table, key, table, key),
	}
}

// stepDDL builds every DDL statement needed to move the database from the
// previous step's schema (nil collections map for a fresh database) to
// this step's schema.
func stepDDL(prev map[string]schema.Collection, step schema.VersionStep) []string {
	names := make([]string, 0, len(step.Collections))
	for name := range step.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	var stmts []string
	for _, name := range names {
		cur := step.Collections[name]
		if before, existed := prev[name]; existed {
			stmts = append(stmts, addColumnSQL(before, cur)...)
		} else {
			stmts = append(stmts, createTableSQL(cur))
		}
		stmts = append(stmts, indexSQL(cur)...)
		for _, idx := range cur.Indices {
			if idx.FullTextIndexName != "" {
				stmts = append(stmts, termTableSQL(cur, idx)...)
			}
		}
	}
	return stmts
}
