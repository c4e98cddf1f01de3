// Package textproc implements the text pipeline shared by both storage
// backends: URL normalization and searchable-term extraction.
//
// Both functions are pure and deterministic. The same input always yields
// the same output regardless of which backend consumes it, which is what
// makes the legacy and structured indexes comparable during migration.
//
// NormalizeURL never fails: input that cannot be parsed as a URL degrades
// to treating the cleaned raw string as domain, hostname, and path at once.
package textproc
