package exthost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/finitestate"
	"github.com/robbyt/go-supervisor/supervisor"
	"google.golang.org/grpc"
)

var (
	_ supervisor.Runnable  = (*Listener)(nil)
	_ supervisor.Stateable = (*Listener)(nil)
	_ supervisor.Readiness = (*Listener)(nil)
)

// Service is anything that can add itself to a gRPC server, such as
// *MainThreadServer or *ExtHostServer.
type Service interface {
	Register(s grpc.ServiceRegistrar)
}

// Listener serves bridge services on a TCP address or a "unix:/path" socket
// as a supervisor runnable.
type Listener struct {
	address  string
	services []Service
	logger   *slog.Logger
	fsm      finitestate.Machine

	mu     sync.Mutex
	server *grpc.Server
	addr   net.Addr
}

// NewListener creates a Listener for services on address.
func NewListener(address string, logger *slog.Logger, services ...Service) (*Listener, error) {
	if logger == nil {
		logger = slog.Default().WithGroup("exthost.Listener")
	}
	if _, _, err := parseListenAddr(address); err != nil {
		return nil, err
	}

	machine, err := finitestate.New(logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}

	return &Listener{
		address:  address,
		services: services,
		logger:   logger,
		fsm:      machine,
	}, nil
}

func (l *Listener) String() string {
	return fmt.Sprintf("exthost.Listener[%s]", l.address)
}

// Addr returns the bound address once the listener is running.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addr
}

// Run binds the address and serves until ctx is canceled or Stop is called.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}

	network, address, err := parseListenAddr(l.address)
	if err != nil {
		l.setError()
		return err
	}
	if network == "unix" {
		if err := cleanupUnixSocket(address, l.logger); err != nil {
			l.setError()
			return err
		}
	}

	lis, err := net.Listen(network, address)
	if err != nil {
		l.setError()
		return fmt.Errorf("listening on %s://%s: %w", network, address, err)
	}

	server := grpc.NewServer()
	for _, svc := range l.services {
		svc.Register(server)
	}

	l.mu.Lock()
	l.server = server
	l.addr = lis.Addr()
	l.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if err := l.fsm.Transition(finitestate.StatusRunning); err != nil {
		server.Stop()
		return fmt.Errorf("failed to transition to running state: %w", err)
	}
	l.logger.Info("Bridge listener running", "address", lis.Addr().String())

	select {
	case <-ctx.Done():
		l.Stop()
		<-serveErr
	case err, ok := <-serveErr:
		if ok && err != nil {
			l.setError()
			return fmt.Errorf("gRPC server error: %w", err)
		}
	}

	if l.fsm.GetState() == finitestate.StatusStopping {
		if err := l.fsm.Transition(finitestate.StatusStopped); err != nil {
			return fmt.Errorf("failed to transition to stopped state: %w", err)
		}
	}
	return nil
}

// Stop gracefully stops the gRPC server.
func (l *Listener) Stop() {
	l.mu.Lock()
	server := l.server
	l.mu.Unlock()

	if server == nil {
		return
	}
	if l.fsm.GetState() == finitestate.StatusRunning {
		if err := l.fsm.Transition(finitestate.StatusStopping); err != nil {
			l.logger.Error("Failed to transition to stopping state", "error", err)
		}
	}
	server.GracefulStop()
	l.logger.Info("Bridge listener stopped")
}

func (l *Listener) setError() {
	if err := l.fsm.Transition(finitestate.StatusError); err != nil {
		l.logger.Error("Failed to transition to error state", "error", err)
	}
}

// GetState implements the supervisor.Stateable interface
func (l *Listener) GetState() string {
	return l.fsm.GetState()
}

// GetStateChan implements the supervisor.Stateable interface
func (l *Listener) GetStateChan(ctx context.Context) <-chan string {
	return l.fsm.GetStateChan(ctx)
}

// IsReady implements the supervisor.Readiness interface
func (l *Listener) IsReady() bool {
	return l.fsm.GetState() == finitestate.StatusRunning
}

// parseListenAddr splits "unix:/path" from TCP "host:port" addresses.
func parseListenAddr(listenAddr string) (network, address string, err error) {
	if path, ok := strings.CutPrefix(listenAddr, "unix:"); ok {
		if path == "" {
			return "", "", errors.New("invalid unix socket address: empty path")
		}
		return "unix", path, nil
	}
	if listenAddr == "" {
		return "", "", errors.New("empty listen address")
	}
	return "tcp", listenAddr, nil
}

// cleanupUnixSocket removes a stale socket file left by an earlier run.
func cleanupUnixSocket(socketPath string, logger *slog.Logger) error {
	info, err := os.Lstat(socketPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat unix socket %q: %w", socketPath, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("refusing to remove %q: not a socket", socketPath)
	}

	logger.Warn("Removing existing unix socket", "path", socketPath)
	if err := os.Remove(socketPath); err != nil {
		return fmt.Errorf("failed to remove existing unix socket %q: %w", socketPath, err)
	}
	return nil
}
