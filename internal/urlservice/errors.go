package urlservice

import "errors"

var (
	// ErrHandlerPanic wraps a value recovered from a panicking handler
	ErrHandlerPanic = errors.New("URL handler panicked")

	// ErrEmptyIdentifier is returned when a callback URI is requested without an identifier
	ErrEmptyIdentifier = errors.New("empty identifier")

	// ErrMissingScheme is returned by the native factory when no product URL scheme is configured
	ErrMissingScheme = errors.New("missing product URL scheme")

	// ErrMissingOrigin is returned by the browser factory when no origin is configured
	ErrMissingOrigin = errors.New("missing web origin")
)
