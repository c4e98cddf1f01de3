// Package schema implements the declarative schema registry that drives the
// structured table backend.
//
// Features register collection definitions (fields, indexes, a version
// timestamp, and optionally a data migration). The registry then computes
// the ordered sequence of physical schema versions the table engine must
// step through: registering multiple definitions for the same collection at
// different version timestamps expresses schema evolution over time.
//
// The computed schema is cumulative: each step contains the union of every
// collection known up to that step's version timestamp, and never
// retroactively removes fields. Migrations are identified by a unique
// string ID and appear at most once across the whole computed sequence, no
// matter how many registrations share them; the table backend additionally
// records applied IDs durably so re-running an upgrade is idempotent.
package schema
