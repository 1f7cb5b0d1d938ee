package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrNoStashDir is returned when no stash directory is configured.
	ErrNoStashDir = errors.New("no stash directory specified")

	// ErrNoBaseURL is returned when the base URL is empty.
	ErrNoBaseURL = errors.New("no base URL specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidFetchAttempts is returned when fewer than one attempt is allowed.
	ErrInvalidFetchAttempts = errors.New("invalid fetch attempts: must be at least 1")

	// ErrInvalidPause is returned when a pause range is negative or inverted.
	ErrInvalidPause = errors.New("invalid pause range: min must be non-negative and not above max")

	// ErrInvalidMaxListingPages is returned when the page cap is not positive.
	ErrInvalidMaxListingPages = errors.New("invalid max listing pages: must be positive")

	// ErrInvalidMaxSearchPages is returned when the search page cap is not positive.
	ErrInvalidMaxSearchPages = errors.New("invalid max search pages: must be positive")

	// ErrInvalidRequestRate is returned when the request ceiling is not positive.
	ErrInvalidRequestRate = errors.New("invalid requests per second: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidReportWorkers is returned when the worker count is not positive.
	ErrInvalidReportWorkers = errors.New("invalid report workers: must be positive")
)

// Instruction file errors. Both are fatal: the run does not start.
var (
	// ErrInvalidCemeteryID is returned for a cemetery id that is not numeric.
	ErrInvalidCemeteryID = errors.New("cemetery id must be numeric")

	// ErrNoCemeteries is returned when an instruction file names no cemetery.
	ErrNoCemeteries = errors.New("instruction file lists no cemeteries")
)

// Search file errors. Both are fatal: no search runs.
var (
	// ErrInvalidSearch is returned for a search line that is not
	// "<url>;<label>" with an absolute http(s) URL and a label.
	ErrInvalidSearch = errors.New("search line must be <url>;<label>")

	// ErrNoSearches is returned when a search file names no search.
	ErrNoSearches = errors.New("search file lists no searches")
)

// InstructionError reports a bad line in the instruction file.
type InstructionError struct {
	// Line is the 1-based line number.
	Line int

	// Text is the offending line as written.
	Text string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction line %d %q: %v", e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying cause.
func (e *InstructionError) Unwrap() error {
	return e.Err
}
