package fetch

import (
	"errors"
	"fmt"
)

// Fetch errors.
var (
	// ErrFetchFailed is matched by every *FetchError. A page that could not
	// be retrieved within the retry budget ends the run.
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrUnexpectedStatus is wrapped when the final attempt answered with a
	// status other than 200.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is wrapped when a response exceeds the body size cap.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// FetchError describes a page that could not be fetched.
type FetchError struct {
	// URL is the requested page.
	URL string
	// StatusCode is the status of the last response, 0 when no response
	// was received.
	StatusCode int
	// Attempts is the number of requests that were made.
	Attempts int
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s): %v", e.URL, e.StatusCode, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrFetchFailed as a match.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
