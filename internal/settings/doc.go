// Package settings provides a durable key-value store for small pieces
// of application state, such as the active backend flag and migration
// progress. Values are strings; absent keys read as the empty string.
package settings
