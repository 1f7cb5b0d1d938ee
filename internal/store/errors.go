package store

import "errors"

// Stash errors.
var (
	// ErrPageExists is returned by Write when the page is already cached.
	// Cached pages are only replaced after their group folder is reset.
	ErrPageExists = errors.New("page already in stash")

	// ErrPageNotFound is returned when a cached page does not exist.
	ErrPageNotFound = errors.New("page not in stash")

	// ErrBadFileName is returned by ParseFileName for names that were not
	// produced by Key.FileName.
	ErrBadFileName = errors.New("not a stash page file name")

	// ErrUnsafeKey is returned for a key whose folder or file name would
	// not stay a single element inside the stash.
	ErrUnsafeKey = errors.New("page key escapes the stash")

	// ErrCemeteryNotFound is returned when no folder exists for a cemetery.
	ErrCemeteryNotFound = errors.New("cemetery folder not found")
)
