// Package legacy implements the original inverted-index storage backend on
// top of a single ordered key-value log (Pebble).
//
// The physical model is one keyspace routed by key prefix:
//
//	page/<id>       reverse index document for one page
//	term/<t>        content term  -> {pageID: {latest}}
//	title/<t>       title term    -> {pageID: {latest}}
//	url/<t>         URL-path term -> {pageID: {latest}}
//	domain/<d>      domain        -> {pageID: {latest}}
//	tag/<t>         tag name      -> {pageID: {latest}}
//	visit/<ts>      visit event    -> {pageID, interaction}
//	bookmark/<ts>   bookmark event -> {pageID}
//
// Every key referenced by a page's reverse index document must have a
// mirrored entry in the corresponding reverse index and vice versa; the
// store offers no multi-key transactions, so this invariant is protected
// purely by serializing all index-mutating operations through a single
// in-process operation queue. Reads do not take the queue.
//
// The page-document write of an operation always lands before its
// side-index updates, because those updates read the document's new
// "latest" value. The four side-index groups (term-type indexes, timestamp
// entries, domain entry, tag entries) have no ordering dependency between
// each other and run concurrently.
package legacy
