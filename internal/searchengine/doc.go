// Package searchengine ranks and filters indexed pages on top of a
// storage-agnostic Source. Both the key-value and the structured backend
// implement Source, so query semantics live in exactly one place.
package searchengine
