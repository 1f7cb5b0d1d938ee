package crawler

import (
	"time"

	"github.com/nao1215/gravestash/internal/model"
)

// Summary counts the work of one Dig call.
type Summary struct {
	Started    time.Time
	Finished   time.Time
	Cemeteries []CemeterySummary
}

// CemeterySummary counts the work done for one cemetery.
type CemeterySummary struct {
	// ID is the cemetery id.
	ID string

	// Name is the name shown on the cemetery page.
	Name string

	// Folder is the cemetery folder name in the stash.
	Folder string

	// Groups lists the groups run, in order.
	Groups []GroupSummary
}

// GroupSummary counts the work done for one group.
type GroupSummary struct {
	Kind model.RelationKind

	// Listed is the number of URLs written to the group list.
	Listed int

	// Fetched is the number of pages downloaded.
	Fetched int

	// Cached is the number of pages already in the stash.
	Cached int

	// Duplicates is the number of family links skipped because the master
	// list already held them.
	Duplicates int

	// ListingPages is the number of search pages read (burial group only).
	ListingPages int
}

// Fetched returns the number of pages downloaded for the cemetery.
func (c CemeterySummary) Fetched() int {
	n := 0
	for _, g := range c.Groups {
		n += g.Fetched
	}
	return n
}

// Fetched returns the number of pages downloaded in the run.
func (s *Summary) Fetched() int {
	n := 0
	for _, c := range s.Cemeteries {
		n += c.Fetched()
	}
	return n
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}
