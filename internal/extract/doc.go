// Package extract turns a cached memorial page into one report row.
//
// What to look for on a page is data, not code: a Schema (loaded from the
// embedded schema.yaml or a user supplied copy) maps every field to a list
// of CSS selectors and a normalization mode. The Extractor owns one rule per
// report column, held in a fixed-size table indexed by model.Column, and
// every rule degrades to an empty cell when its markup is missing.
//
// Rules that look beyond the page itself (the home cemetery of a family
// member, for example) go through a Run, which carries the master index and
// a cache shared by all rows of a report.
package extract
