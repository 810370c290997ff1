// Package finitestate wraps go-fsm for the runnables and pollers in this module.
package finitestate

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-fsm"
)

// Lifecycle states for long-running components.
const (
	StatusNew       = fsm.StatusNew
	StatusBooting   = fsm.StatusBooting
	StatusRunning   = fsm.StatusRunning
	StatusReloading = fsm.StatusReloading
	StatusStopping  = fsm.StatusStopping
	StatusStopped   = fsm.StatusStopped
	StatusError     = fsm.StatusError
	StatusUnknown   = fsm.StatusUnknown
)

// TypicalTransitions is the standard lifecycle transition table.
var TypicalTransitions = fsm.TypicalTransitions

// Machine is the subset of the go-fsm state machine used in this module.
type Machine interface {
	// Transition attempts to transition the state machine to the specified state.
	Transition(state string) error

	// TransitionBool attempts to transition and reports whether it succeeded.
	TransitionBool(state string) bool

	// GetState returns the current state of the state machine.
	GetState() string

	// GetStateChan returns a channel that emits the state machine's state whenever it changes.
	// The channel is closed when the provided context is canceled.
	GetStateChan(ctx context.Context) <-chan string
}

// New creates a lifecycle state machine starting in StatusNew.
func New(handler slog.Handler) (Machine, error) {
	return NewWithTransitions(handler, StatusNew, TypicalTransitions)
}

// NewWithTransitions creates a state machine with a custom transition table.
func NewWithTransitions(
	handler slog.Handler,
	initial string,
	transitions map[string][]string,
) (Machine, error) {
	return fsm.New(handler, initial, transitions)
}
