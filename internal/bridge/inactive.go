package bridge

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
)

// DefaultMaxPending caps the URIs buffered for one inactive extension.
const DefaultMaxPending = 16

// Activator starts an extension that is declared but not running.
type Activator interface {
	Activate(ctx context.Context, extensionID string) error
}

// ActivatorFunc adapts a function to the Activator interface.
type ActivatorFunc func(ctx context.Context, extensionID string) error

// Activate calls f(ctx, extensionID).
func (f ActivatorFunc) Activate(ctx context.Context, extensionID string) error {
	return f(ctx, extensionID)
}

var (
	_ InactiveHandlers   = (*InactiveRegistry)(nil)
	_ urlservice.Handler = (*InactiveRegistry)(nil)
)

// InactiveRegistry holds URIs for extensions that declare a URI handler but
// have not registered one yet. Register it with the dispatcher after the
// bridge: a URI for a declared extension without a live handler is claimed,
// buffered and handed over once the extension registers.
type InactiveRegistry struct {
	activator  Activator
	maxPending int
	logger     *slog.Logger

	mu       sync.Mutex
	declared map[string]struct{}
	handlers map[string]urlservice.Handler
	pending  map[string][]uri.URI

	wg sync.WaitGroup
}

// InactiveOption configures an InactiveRegistry.
type InactiveOption func(*InactiveRegistry)

// WithActivator sets what is called when a URI arrives for a sleeping extension.
func WithActivator(a Activator) InactiveOption {
	return func(r *InactiveRegistry) {
		r.activator = a
	}
}

// WithMaxPending caps the buffered URIs per extension; the oldest are dropped.
func WithMaxPending(n int) InactiveOption {
	return func(r *InactiveRegistry) {
		if n > 0 {
			r.maxPending = n
		}
	}
}

// WithInactiveLogger sets a custom logger for the InactiveRegistry.
func WithInactiveLogger(logger *slog.Logger) InactiveOption {
	return func(r *InactiveRegistry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewInactiveRegistry creates an InactiveRegistry for the given extensions.
func NewInactiveRegistry(extensionIDs []string, opts ...InactiveOption) *InactiveRegistry {
	r := &InactiveRegistry{
		maxPending: DefaultMaxPending,
		logger:     slog.Default().WithGroup("bridge.InactiveRegistry"),
		declared:   make(map[string]struct{}),
		handlers:   make(map[string]urlservice.Handler),
		pending:    make(map[string][]uri.URI),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Declare(extensionIDs...)
	return r
}

func extensionKey(id string) string {
	return strings.ToLower(id)
}

// Declare marks extensions as owning a URI handler, running or not.
func (r *InactiveRegistry) Declare(extensionIDs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range extensionIDs {
		if id != "" {
			r.declared[extensionKey(id)] = struct{}{}
		}
	}
}

// RegisterExtensionHandler records the live handler of extensionID and hands
// it any URIs buffered while the extension was asleep.
func (r *InactiveRegistry) RegisterExtensionHandler(extensionID string, h urlservice.Handler) {
	key := extensionKey(extensionID)

	r.mu.Lock()
	r.declared[key] = struct{}{}
	r.handlers[key] = h
	queued := r.pending[key]
	delete(r.pending, key)
	if len(queued) > 0 {
		r.wg.Add(1)
	}
	r.mu.Unlock()

	if len(queued) == 0 {
		return
	}

	r.logger.Debug("Flushing pending URIs", "extension", extensionID, "count", len(queued))
	go func() {
		defer r.wg.Done()
		ctx := context.Background()
		for _, u := range queued {
			if _, err := h.HandleURL(ctx, u); err != nil {
				r.logger.Warn("Pending URI was not delivered", "extension", extensionID, "uri", u.String(), "error", err)
			}
		}
	}()
}

// UnregisterExtensionHandler forgets the live handler of extensionID. The
// extension stays declared, so later URIs are buffered again.
func (r *InactiveRegistry) UnregisterExtensionHandler(extensionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, extensionKey(extensionID))
}

// Handler returns the live handler of extensionID.
func (r *InactiveRegistry) Handler(extensionID string) (urlservice.Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[extensionKey(extensionID)]
	return h, ok
}

// Pending returns the number of URIs buffered for extensionID.
func (r *InactiveRegistry) Pending(extensionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending[extensionKey(extensionID)])
}

// HandleURL claims URIs addressed to a declared extension that has no live
// handler, buffers them and asks the activator to start the extension.
func (r *InactiveRegistry) HandleURL(ctx context.Context, u uri.URI) (bool, error) {
	id := u.Authority()
	key := extensionKey(id)

	r.mu.Lock()
	if _, ok := r.declared[key]; !ok {
		r.mu.Unlock()
		return false, nil
	}
	if _, live := r.handlers[key]; live {
		r.mu.Unlock()
		return false, nil
	}

	queue := append(r.pending[key], u)
	if dropped := len(queue) - r.maxPending; dropped > 0 {
		r.logger.Warn("Dropping oldest pending URIs", "extension", id, "dropped", dropped)
		queue = queue[dropped:]
	}
	r.pending[key] = queue
	r.mu.Unlock()

	if r.activator != nil {
		if err := r.activator.Activate(ctx, id); err != nil {
			r.logger.Warn("Failed to activate extension", "extension", id, "error", err)
		}
	}
	return true, nil
}

// Wait blocks until every pending flush has finished.
func (r *InactiveRegistry) Wait() {
	r.wg.Wait()
}
