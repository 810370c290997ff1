package bridge

import (
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/config"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets a custom logger for the Bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLogHandler builds the Bridge logger from handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(b *Bridge) {
		if handler != nil {
			b.logger = slog.New(handler).WithGroup("bridge")
		}
	}
}

// WithDeploymentMode selects how CreateAppURI builds URIs.
func WithDeploymentMode(mode config.DeploymentMode) Option {
	return func(b *Bridge) {
		b.mode = mode
	}
}

// WithScheme sets the product URL scheme used in native mode.
func WithScheme(scheme string) Option {
	return func(b *Bridge) {
		b.scheme = scheme
	}
}

// WithInactiveHandlers registers every remote handler with inactive as well.
func WithInactiveHandlers(inactive InactiveHandlers) Option {
	return func(b *Bridge) {
		b.inactive = inactive
	}
}
