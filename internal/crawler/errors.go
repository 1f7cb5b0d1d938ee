package crawler

import (
	"errors"
	"fmt"

	"github.com/nao1215/gravestash/internal/model"
)

var (
	// ErrRunawayPagination is returned when a cemetery listing still has
	// more pages after the page cap.
	ErrRunawayPagination = errors.New("listing did not end within the page cap")

	// ErrNoBurials is returned when a cemetery listing yields no memorials.
	ErrNoBurials = errors.New("no memorials found in cemetery")

	// ErrMissingBurialList is returned when a family group runs for a
	// cemetery whose burial list was never built.
	ErrMissingBurialList = errors.New("burial list is missing")

	// ErrCemeteryUnnamed is returned when the cemetery landing page shows
	// no name to build the folder from.
	ErrCemeteryUnnamed = errors.New("cemetery page has no name")
)

// GroupError reports the cemetery and group a crawl failed in.
type GroupError struct {
	// CemeteryID is the cemetery being crawled.
	CemeteryID string

	// Kind is the group being crawled.
	Kind model.RelationKind

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	return fmt.Sprintf("cemetery %s, group %s: %v", e.CemeteryID, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *GroupError) Unwrap() error {
	return e.Err
}
