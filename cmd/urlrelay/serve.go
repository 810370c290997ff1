package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/cmd/urlrelay/server"
	"github.com/atlanticdynamic/urlrelay/internal/relay"
	"github.com/urfave/cli/v3"
)

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the callback mailbox with its pollers and bridge",
		Flags:  []cli.Flag{newConfigFlag()},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	handler, closer, err := setupLogger(cmd, cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	r, err := relay.New(cfg, relay.WithContext(ctx), relay.WithLogHandler(handler))
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}

	slog.New(handler).Info("Starting urlrelay", "mode", cfg.Deployment.Mode, "mailbox", cfg.Mailbox.Listen)
	return server.Run(ctx, handler, r)
}
