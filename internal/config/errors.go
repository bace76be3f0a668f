package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Callers can match them with errors.Is().
var (
	// ErrInvalidLineID is returned when the line ID is not an integer.
	ErrInvalidLineID = errors.New("invalid line id: must be an integer")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base url: must be an absolute http or https url")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrEmptyUserAgent is returned when the User-Agent is blank.
	ErrEmptyUserAgent = errors.New("invalid user agent: must not be empty")

	// ErrEmptyCacheFile is returned when no cache file path is configured.
	ErrEmptyCacheFile = errors.New("invalid cache file: path must not be empty")

	// ErrEmptyDBDir is returned when history is requested without a database directory.
	ErrEmptyDBDir = errors.New("invalid database directory: path must not be empty when history is enabled")
)
