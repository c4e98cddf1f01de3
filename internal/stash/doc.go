// Package stash is the facade the rest of the program talks to. It owns
// both storage backends, resolves which one is authoritative once at
// startup, and dispatches every index operation to that backend.
package stash
