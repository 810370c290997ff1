package testutil

import (
	"context"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

// RecordingDispatcher records every URI it is asked to open and answers with Accept.
type RecordingDispatcher struct {
	Accept bool

	mu     sync.Mutex
	opened []uri.URI
}

// Open records u.
func (d *RecordingDispatcher) Open(_ context.Context, u uri.URI) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = append(d.opened, u)
	return d.Accept
}

// Opened returns a copy of the URIs opened so far, in order.
func (d *RecordingDispatcher) Opened() []uri.URI {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]uri.URI, len(d.opened))
	copy(out, d.opened)
	return out
}

// RecordingHandler records every URI offered to it and answers with Accept and Err.
type RecordingHandler struct {
	Accept bool
	Err    error

	mu   sync.Mutex
	seen []uri.URI
}

// HandleURL records u.
func (h *RecordingHandler) HandleURL(_ context.Context, u uri.URI) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, u)
	return h.Accept, h.Err
}

// Seen returns a copy of the URIs offered so far, in order.
func (h *RecordingHandler) Seen() []uri.URI {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uri.URI, len(h.seen))
	copy(out, h.seen)
	return out
}
