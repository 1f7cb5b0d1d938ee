package report

import "errors"

// Report errors.
var (
	// ErrMissingBurialList is returned when a cemetery in the instruction
	// file has no burial list in the stash.
	ErrMissingBurialList = errors.New("burial list not in stash")

	// ErrMissingBurialPage is returned when a URL of the burial list has
	// no cached page. The stash is incomplete and the crawl must be rerun.
	ErrMissingBurialPage = errors.New("burial page not in stash")

	// ErrEmptyWorkbook is returned by writers given a workbook without sheets.
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)
