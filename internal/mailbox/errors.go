package mailbox

import "errors"

var (
	ErrMissingAddress  = errors.New("mailbox listen address is empty")
	ErrMissingHandlers = errors.New("mailbox handlers are nil")
)
