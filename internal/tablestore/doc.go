// Package tablestore is the structured storage backend: relational tables
// in a single SQLite database, with the physical schema generated from the
// declarative collection registry in internal/schema.
//
// On open the store computes the registry's version sequence, steps the
// database through any versions it has not applied yet, and runs the data
// migrations attached to each step inside that step's upgrade transaction.
// Every logical operation (index a page, delete a bookmark, import a
// migrated page) is one SQL transaction.
package tablestore
