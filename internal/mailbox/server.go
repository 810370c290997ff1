package mailbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Server)(nil)
	_ supervisor.Stateable = (*Server)(nil)
	_ supervisor.Readiness = (*Server)(nil)
)

// DefaultDrainTimeout bounds how long in-flight requests may finish on Stop.
const DefaultDrainTimeout = 5 * time.Second

// Server runs the mailbox endpoints on one address under go-supervisor.
type Server struct {
	address      string
	handlers     *Handlers
	drainTimeout time.Duration
	logger       *slog.Logger

	runner *httpserver.Runner
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets a custom logger for the Server and its access log.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDrainTimeout sets how long Stop waits for in-flight requests.
func WithDrainTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.drainTimeout = d
	}
}

// NewServer creates a mailbox Server listening on address.
func NewServer(address string, handlers *Handlers, opts ...ServerOption) (*Server, error) {
	if address == "" {
		return nil, ErrMissingAddress
	}
	if handlers == nil {
		return nil, ErrMissingHandlers
	}

	s := &Server{
		address:      address,
		handlers:     handlers,
		drainTimeout: DefaultDrainTimeout,
		logger:       slog.Default().WithGroup("mailbox.Server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	runner, err := httpserver.NewRunner(httpserver.WithConfigCallback(s.buildConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server runner: %w", err)
	}
	s.runner = runner
	return s, nil
}

// Routes returns the mailbox routes with their middleware.
func (s *Server) Routes() ([]httpserver.Route, error) {
	mws := []httpserver.HandlerFunc{accessLog(s.logger), noStore()}

	callback, err := httpserver.NewRouteFromHandlerFunc(
		"callback", CallbackPath, http.HandlerFunc(s.handlers.Callback), mws...)
	if err != nil {
		return nil, fmt.Errorf("failed to create callback route: %w", err)
	}

	fetch, err := httpserver.NewRouteFromHandlerFunc(
		"fetch-callback", FetchCallbackPath, http.HandlerFunc(s.handlers.FetchCallback), mws...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch-callback route: %w", err)
	}

	return []httpserver.Route{*callback, *fetch}, nil
}

func (s *Server) buildConfig() (*httpserver.Config, error) {
	routes, err := s.Routes()
	if err != nil {
		return nil, err
	}

	cfg, err := httpserver.NewConfig(s.address, routes,
		httpserver.WithReadTimeout(10*time.Second),
		httpserver.WithWriteTimeout(10*time.Second),
		httpserver.WithDrainTimeout(s.drainTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server config: %w", err)
	}
	return cfg, nil
}

// String implements the supervisor.Runnable interface
func (s *Server) String() string {
	return fmt.Sprintf("mailbox.Server[%s]", s.address)
}

// Run implements the supervisor.Runnable interface
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting mailbox server", "address", s.address)
	return s.runner.Run(ctx)
}

// Stop implements the supervisor.Runnable interface
func (s *Server) Stop() {
	s.logger.Info("Stopping mailbox server", "address", s.address)
	s.runner.Stop()
}

// GetState implements the supervisor.Stateable interface
func (s *Server) GetState() string {
	return s.runner.GetState()
}

// GetStateChan implements the supervisor.Stateable interface
func (s *Server) GetStateChan(ctx context.Context) <-chan string {
	return s.runner.GetStateChan(ctx)
}

// IsReady implements the supervisor.Readiness interface
func (s *Server) IsReady() bool {
	return s.runner.IsReady()
}
