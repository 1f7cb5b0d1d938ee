// Package database provides the crawl ledger, a SQLite database that
// records what the crawler stored and which family links it followed.
//
// The ledger is separate from the stash: the stash holds raw pages and is
// rebuilt group by group, while the ledger keeps one row per stored page
// (with a SHA3-256 digest of its body) and one row per relation edge, so
// the status command can summarize a collection without walking files.
//
// The driver is modernc.org/sqlite, a CGO-free SQLite port.
package database
