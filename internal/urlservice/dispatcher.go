package urlservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

// Dispatcher routes incoming URIs through a Registry. Handlers are asked one at
// a time, in registration order, and the first one to accept wins.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher with an empty registry.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		logger:   slog.Default().WithGroup("urlservice.Dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterHandler adds h to the registry. Disposing the returned token removes it.
func (d *Dispatcher) RegisterHandler(h Handler) Disposable {
	return d.registry.Register(h)
}

// Open offers u to every registered handler until one accepts. The handler set
// is captured when Open is called. A handler that returns an error or panics is
// logged and treated as not accepting. Open stops early, returning false, when
// ctx is done between two handlers.
func (d *Dispatcher) Open(ctx context.Context, u uri.URI) bool {
	handlers := d.registry.Snapshot()
	if len(handlers) == 0 {
		d.logger.Debug("No handlers registered", "uri", u.String())
		return false
	}

	for i, h := range handlers {
		if err := ctx.Err(); err != nil {
			d.logger.Debug("Dispatch abandoned", "uri", u.String(), "error", err)
			return false
		}

		accepted, err := callHandler(ctx, h, u)
		if err != nil {
			d.logger.Warn("URL handler failed", "uri", u.String(), "index", i, "error", err)
			continue
		}
		if accepted {
			d.logger.Debug("URL handled", "uri", u.String(), "index", i)
			return true
		}
	}

	d.logger.Debug("No handler accepted URI", "uri", u.String(), "handlers", len(handlers))
	return false
}

// callHandler invokes h, converting a panic into ErrHandlerPanic.
func callHandler(ctx context.Context, h Handler, u uri.URI) (accepted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			accepted = false
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.HandleURL(ctx, u)
}
