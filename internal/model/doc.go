// Package model defines the core data structures used throughout pagestash.
//
// This package contains the following main types:
//   - Page: Canonical record for one URL's saved content
//   - Visit / Bookmark / Tag / FavIcon: Event and association records
//   - PageContent: Input record produced by an external content fetcher
//   - SearchParams / SearchResult: Query surface of the search engine
//   - ExportedPage: Backend-independent export format used by migration
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Both storage backends, the search engine, and the migration
// manager need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for storage in the
// legacy key-value backend and for the migration export format.
package model
