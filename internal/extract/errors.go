package extract

import "errors"

var (
	// ErrMissingMarkup is returned by the lookup helpers when no selector of
	// a field matches. Column rules absorb it into an empty cell.
	ErrMissingMarkup = errors.New("markup not found")

	// ErrInvalidSchema is returned when a page schema is incomplete or a
	// selector does not compile.
	ErrInvalidSchema = errors.New("invalid page schema")
)
