package relay

import (
	"context"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/bridge"
	"github.com/atlanticdynamic/urlrelay/internal/poller"
	"google.golang.org/grpc"
)

// Option configures a Relay.
type Option func(*Relay)

// WithLogHandler sets the handler every component logs through.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Relay) {
		if handler != nil {
			r.logger = slog.New(handler)
		}
	}
}

// WithContext sets the parent context of the poller group.
func WithContext(ctx context.Context) Option {
	return func(r *Relay) {
		r.ctx = ctx
	}
}

// WithPollerOptions adds options for every poller launched in web mode.
func WithPollerOptions(opts ...poller.Option) Option {
	return func(r *Relay) {
		r.pollerOpts = append(r.pollerOpts, opts...)
	}
}

// WithExtHostConn makes the bridge talk to the extension host over conn
// instead of dialing the configured address. The caller owns conn.
func WithExtHostConn(conn grpc.ClientConnInterface) Option {
	return func(r *Relay) {
		r.extHostConn = conn
	}
}

// WithActivator sets what wakes declared extensions that are not running.
func WithActivator(a bridge.Activator) Option {
	return func(r *Relay) {
		r.activator = a
	}
}
