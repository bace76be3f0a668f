package fetch

import (
	"errors"
	"fmt"
)

// ErrTransport matches every *TransportError with errors.Is.
var ErrTransport = errors.New("transport error")

// ErrInvalidEncoding is the cause recorded when a response body is not valid UTF-8.
var ErrInvalidEncoding = errors.New("response body is not valid UTF-8")

// TransportError reports a failed network fetch: the request could not be
// sent, the server answered with a non-2xx status, or the body could not be
// read as text. It is never retried.
type TransportError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
