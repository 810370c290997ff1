package poller

// Poller states.
const (
	StatePolling     = "polling"
	StateEmptyRetry  = "empty_retry"
	StateDelivered   = "delivered"
	StateDispatching = "dispatching"
	StateParseError  = "parse_error"
	StateTerminated  = "terminated"
)

// Transitions is the poller state table. Terminated is reached after a
// delivery, after a parse error, after a failed request, or when the poller's
// context is canceled.
var Transitions = map[string][]string{
	StatePolling:     {StateEmptyRetry, StateDelivered, StateParseError, StateTerminated},
	StateEmptyRetry:  {StatePolling, StateTerminated},
	StateDelivered:   {StateDispatching, StateTerminated},
	StateDispatching: {StateTerminated},
	StateParseError:  {StateTerminated},
	StateTerminated:  {},
}
