package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/relay"
	"github.com/robbyt/go-supervisor/supervisor"
)

// Run supervises the mailbox server, the poller group and the bridge listener
// built into r until ctx is canceled or a signal arrives. It closes r on return.
func Run(ctx context.Context, logHandler slog.Handler, r *relay.Relay) error {
	logger := slog.New(logHandler)
	defer func() {
		if err := r.Close(); err != nil {
			logger.Warn("Failed to close relay", "error", err)
		}
	}()

	super, err := supervisor.New(
		supervisor.WithContext(ctx),
		supervisor.WithLogHandler(logHandler),
		supervisor.WithRunnables(r.Runnables()...),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	if err := super.Run(); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}
