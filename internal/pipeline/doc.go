// Package pipeline runs ordered steps and ordered batches.
//
// A Pipeline executes named steps one after another, stopping at the first
// failure, and can run an interlude between consecutive steps. The crawler
// uses it to process the groups of one cemetery with a pause between them.
//
// ProcessBatch runs one function over many items with bounded concurrency
// (errgroup) and returns the results in input order. The report builder
// uses it to parse cached pages in parallel while keeping list order.
package pipeline
