package bridge

import "errors"

var (
	// ErrBridgeClosed is returned when a handler is registered after Close
	ErrBridgeClosed = errors.New("bridge closed")

	// ErrEmptyExtensionID is returned when an operation is given no extension identifier
	ErrEmptyExtensionID = errors.New("empty extension identifier")

	// ErrMissingProxy is returned when a bridge is created without a remote proxy
	ErrMissingProxy = errors.New("missing extension host proxy")

	// ErrMissingRegistrar is returned when a bridge is created without a handler registrar
	ErrMissingRegistrar = errors.New("missing handler registrar")
)
