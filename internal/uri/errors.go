package uri

import "errors"

var (
	// ErrInvalidURI is returned when a raw string cannot be parsed as a URI
	ErrInvalidURI = errors.New("invalid URI")

	// ErrMissingScheme is returned when a URI or wire record has no scheme
	ErrMissingScheme = errors.New("missing URI scheme")
)
