package urlservice

import "log/slog"

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithLogHandler sets a custom log handler for the Dispatcher.
func WithLogHandler(handler slog.Handler) Option {
	return func(d *Dispatcher) {
		d.logger = slog.New(handler)
	}
}

// WithRegistry makes the Dispatcher read from an existing Registry.
func WithRegistry(registry *Registry) Option {
	return func(d *Dispatcher) {
		if registry != nil {
			d.registry = registry
		}
	}
}
