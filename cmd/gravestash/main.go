// Package main provides the entry point for the gravestash CLI.
//
// gravestash downloads the memorial pages of cemeteries, and of the
// family members those memorials link to, into a local stash, then
// extracts them into a spreadsheet.
//
// Usage:
//
//	gravestash stash [instructions-file]
//	gravestash report [instructions-file]
//
// See --help for all available options.
package main

// main is the entry point for gravestash.
func main() {
	Execute()
}
