// Package poller fetches callback URIs from the server mailbox when the
// runtime cannot receive custom-scheme URIs directly.
//
// A Poller asks the fetch-callback endpoint for one identifier. An empty body
// means nothing has arrived yet, so it waits a fixed interval and asks again,
// with no retry limit. A non-empty body is decoded as a JSON list of URI
// records. Each record is dispatched in order and then the poller ends. A body
// that does not decode is logged and the poller ends without retrying.
package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/finitestate"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-loglater/storage"
)

// FetchCallbackPath is the mailbox endpoint polled for delivered URIs.
const FetchCallbackPath = "/fetch-callback"

// Dispatcher receives every URI decoded from a callback payload.
type Dispatcher interface {
	Open(ctx context.Context, u uri.URI) bool
}

// Poller is a single fetch loop for one identifier. It runs once; a new
// callback request needs a new Poller.
type Poller struct {
	ID         uuid.UUID
	identifier string
	fetchURL   string

	dispatcher Dispatcher
	client     HTTPClient
	interval   time.Duration

	fsm          finitestate.Machine
	logger       *slog.Logger
	logCollector *loglater.LogCollector
}

// New creates a Poller for identifier against the server at origin.
func New(origin, identifier string, dispatcher Dispatcher, opts ...Option) (*Poller, error) {
	origin = strings.TrimSuffix(origin, "/")
	if origin == "" {
		return nil, ErrMissingOrigin
	}
	if dispatcher == nil {
		return nil, ErrMissingDispatcher
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	id := uuid.Must(uuid.NewV6())

	logCollector := loglater.NewLogCollector(nil, loglater.WithStorage(
		storage.NewRecordStorage(storage.WithMaxSize(s.historySize)),
	))
	logger := slog.New(&historyHandler{history: logCollector, next: s.logHandler}).
		WithGroup("poller").With("poller_id", id, "id", identifier)

	machine, err := finitestate.NewWithTransitions(logger.Handler(), StatePolling, Transitions)
	if err != nil {
		return nil, fmt.Errorf("%s failed to create state machine: %w", id, err)
	}

	return &Poller{
		ID:           id,
		identifier:   identifier,
		fetchURL:     origin + FetchCallbackPath + "?vscode-id=" + uri.EscapeComponent(identifier),
		dispatcher:   dispatcher,
		client:       s.client,
		interval:     s.interval,
		fsm:          machine,
		logger:       logger,
		logCollector: logCollector,
	}, nil
}

// String returns the name of this poller.
func (p *Poller) String() string {
	return fmt.Sprintf("poller.Poller[%s]", p.identifier)
}

// Identifier returns the callback identifier this poller waits for.
func (p *Poller) Identifier() string {
	return p.identifier
}

// GetState returns the current poller state.
func (p *Poller) GetState() string {
	return p.fsm.GetState()
}

// GetLogs returns the log history of this poller at every level, including
// records the configured handler filtered out.
func (p *Poller) GetLogs() []storage.Record {
	return p.logCollector.GetLogs()
}

// PlaybackLogs replays the poller's log history to handler.
func (p *Poller) PlaybackLogs(handler slog.Handler) error {
	return p.logCollector.PlayLogs(handler)
}

// Run polls until a payload arrives, the payload fails to decode, a request
// fails, or ctx is canceled. Cancellation is not an error.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Debug("Polling for callback", "url", p.fetchURL, "interval", p.interval)

	for {
		body, err := p.fetch(ctx)
		if err != nil {
			p.terminate()
			if ctx.Err() != nil {
				p.logger.Debug("Poller canceled")
				return nil
			}
			p.logger.Error("Fetching callback failed", "error", err)
			return err
		}

		if len(body) > 0 {
			return p.deliver(ctx, body)
		}

		p.setState(StateEmptyRetry)
		if !p.wait(ctx) {
			p.terminate()
			p.logger.Debug("Poller canceled while waiting")
			return nil
		}
		p.setState(StatePolling)
	}
}

// fetch issues one request to the mailbox and reads the full body.
func (p *Poller) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.Debug("Failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetchFailed, err)
	}

	p.logger.Debug("Fetched callback", "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

// deliver decodes a payload and dispatches every URI in order.
func (p *Poller) deliver(ctx context.Context, body []byte) error {
	uris, err := Decode(body)
	if err != nil {
		p.setState(StateParseError)
		p.logger.Error("Discarding callback payload", "error", err)
		p.terminate()
		return err
	}

	p.setState(StateDelivered)
	p.logger.Info("Callback delivered", "uris", len(uris))

	p.setState(StateDispatching)
	for i, u := range uris {
		handled := p.dispatcher.Open(ctx, u)
		p.logger.Debug("Dispatched callback URI", "index", i, "uri", u.String(), "handled", handled)
	}

	p.terminate()
	return nil
}

func (p *Poller) wait(ctx context.Context) bool {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (p *Poller) setState(state string) {
	if err := p.fsm.Transition(state); err != nil {
		p.logger.Error("Failed to transition poller state", "state", state, "error", err)
	}
}

func (p *Poller) terminate() {
	p.setState(StateTerminated)
}

// Decode parses a fetch-callback payload into URIs. A record without a scheme
// makes the whole payload malformed.
func Decode(body []byte) ([]uri.URI, error) {
	var records []uri.Components
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	uris := make([]uri.URI, 0, len(records))
	for i, record := range records {
		u, err := uri.Revive(record)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedPayload, i, err)
		}
		uris = append(uris, u)
	}
	return uris, nil
}
