package cache

import (
	"errors"
	"fmt"
)

// ErrCacheIO matches every *IOError with errors.Is.
var ErrCacheIO = errors.New("cache i/o error")

// IOError reports a failure to read, decode, encode or write the cache file.
// Cache failures are fatal: silently dropping entries would make re-runs
// hit the network again.
type IOError struct {
	// Op is the failed operation ("read", "decode", "encode", "write").
	Op string

	// Path is the cache file path.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrCacheIO.
func (e *IOError) Is(target error) bool {
	return target == ErrCacheIO
}
