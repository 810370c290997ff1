package poller

import "errors"

var (
	// ErrFetchFailed is returned when the fetch-callback request cannot be completed
	ErrFetchFailed = errors.New("fetch-callback request failed")

	// ErrMalformedPayload is returned when a non-empty response is not a JSON list of URI records
	ErrMalformedPayload = errors.New("malformed callback payload")

	// ErrMissingDispatcher is returned when a poller is created without a dispatcher
	ErrMissingDispatcher = errors.New("missing dispatcher")

	// ErrMissingOrigin is returned when a poller is created without a server origin
	ErrMissingOrigin = errors.New("missing origin")
)
