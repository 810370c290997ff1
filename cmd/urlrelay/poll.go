package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/atlanticdynamic/urlrelay/internal/poller"
	"github.com/atlanticdynamic/urlrelay/internal/relay"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/urfave/cli/v3"
)

var errNotWebMode = errors.New("polling needs deployment mode \"web\"")

func newPollCmd() *cli.Command {
	return &cli.Command{
		Name:  "poll",
		Usage: "Wait for callbacks addressed to an identifier and print them",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{
				Name:     "id",
				Usage:    "Identifier to fetch callbacks for",
				Required: true,
			},
		},
		Action: pollAction,
	}
}

func pollAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.IsWeb() {
		return errNotWebMode
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

	printer := newPrintHandler(stdout(cmd))
	r.Service().RegisterHandler(printer)

	id := cmd.String("id")
	r.Group().Launch(id)
	return waitForCallbacks(ctx, r.Group(), printer, id)
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// waitForCallbacks blocks until every launched poller is done. An interrupt
// stops the pollers and is not an error.
func waitForCallbacks(ctx context.Context, group *poller.Group, printer *printHandler, id string) error {
	done := make(chan struct{})
	go func() {
		group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		group.Stop()
		<-done
	}

	if printer.Count() == 0 && ctx.Err() == nil {
		return fmt.Errorf("no callback was delivered for %s", id)
	}
	return nil
}

// printHandler accepts every URI and prints it on its own line.
type printHandler struct {
	w io.Writer

	mu    sync.Mutex
	count int
}

func newPrintHandler(w io.Writer) *printHandler {
	return &printHandler{w: w}
}

func (p *printHandler) HandleURL(_ context.Context, u uri.URI) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	if _, err := fmt.Fprintln(p.w, u); err != nil {
		return false, err
	}
	return true, nil
}

// Count returns how many URIs were printed.
func (p *printHandler) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}
