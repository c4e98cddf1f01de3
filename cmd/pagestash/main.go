// Package main provides the entry point for the pagestash CLI.
//
// pagestash maintains a full-text index of saved web pages with visit
// history, bookmarks, and tags, and migrates the index between its two
// storage backends.
//
// Usage:
//
//	pagestash add <url> --text-file page.txt
//	pagestash search fox --tag nature
//
// See --help for all available options.
package main

// main is the entry point for pagestash.
func main() {
	Execute()
}
