// Package migrate moves the index from the legacy key-value backend to
// the structured table backend: batched, resumable, and cancellable at
// batch boundaries.
//
// Progress is persisted through the settings store after every batch, so
// a restarted process resumes from the last completed batch. The
// completion callback, which flips the authoritative backend, runs
// exactly once over the whole lifetime of a migration.
package migrate
