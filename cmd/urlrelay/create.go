package main

import (
	"context"
	"fmt"

	"github.com/atlanticdynamic/urlrelay/internal/relay"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
	"github.com/urfave/cli/v3"
)

func newCreateCmd() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Print a callback URI addressed to an identifier",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Identifier the callback is addressed to, usually an extension ID",
				Required: true,
			},
			&cli.StringFlag{Name: "path", Usage: "Path carried by the callback"},
			&cli.StringFlag{Name: "query", Usage: "Query carried by the callback"},
			&cli.StringFlag{Name: "fragment", Usage: "Fragment carried by the callback"},
			&cli.BoolFlag{
				Name:    "wait",
				Aliases: []string{"w"},
				Usage:   "In web mode, wait for the callback to be delivered and print it",
			},
		},
		Action: createAction,
	}
}

func createAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	handler, closer, err := setupLogger(cmd, cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	ctx, stop := signalContext(ctx)
	defer stop()

	r, err := relay.New(cfg, relay.WithContext(ctx), relay.WithLogHandler(handler))
	if err != nil {
		return fmt.Errorf("failed to create relay: %w", err)
	}
	defer func() { _ = r.Close() }()

	out := stdout(cmd)
	printer := newPrintHandler(out)
	if cmd.Bool("wait") && r.Group() != nil {
		r.Service().RegisterHandler(printer)
	}

	u, err := r.Service().Create(cmd.String("id"), &urlservice.CreateOptions{
		Path:     cmd.String("path"),
		Query:    cmd.String("query"),
		Fragment: cmd.String("fragment"),
	})
	if err != nil {
		return fmt.Errorf("failed to create URI: %w", err)
	}
	fmt.Fprintln(out, u)

	if !cmd.Bool("wait") || r.Group() == nil {
		return nil
	}
	return waitForCallbacks(ctx, r.Group(), printer, cmd.String("id"))
}
