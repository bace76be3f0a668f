package crawler

import (
	"errors"
	"fmt"
)

// ErrExtraction matches every *ExtractionError with errors.Is.
var ErrExtraction = errors.New("extraction error")

// ExtractionError reports a page whose structure does not match the expected
// layout, such as a timetable link outside a station block or a train link
// without a train id.
type ExtractionError struct {
	// URL is the page being extracted.
	URL string

	// Reason describes what was missing.
	Reason string

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
