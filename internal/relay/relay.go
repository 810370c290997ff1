// Package relay assembles the URI service and its runnables from a Config.
//
// The native and web deployment modes share one Dispatcher. Web mode adds a
// poller group that fetches callbacks from the configured origin. When the
// bridge is enabled, handlers registered by an extension host over gRPC are
// added to the same Dispatcher.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/bridge"
	"github.com/atlanticdynamic/urlrelay/internal/bridge/exthost"
	"github.com/atlanticdynamic/urlrelay/internal/config"
	"github.com/atlanticdynamic/urlrelay/internal/mailbox"
	"github.com/atlanticdynamic/urlrelay/internal/poller"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
	"github.com/robbyt/go-supervisor/supervisor"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Relay owns every component built from one Config.
type Relay struct {
	cfg        *config.Config
	ctx        context.Context
	logger     *slog.Logger
	pollerOpts []poller.Option
	activator  bridge.Activator

	service *urlservice.Service
	group   *poller.Group
	store   *mailbox.Store
	mailbox *mailbox.Server

	extHostConn grpc.ClientConnInterface
	conn        *grpc.ClientConn
	bridge      *bridge.Bridge
	inactive    *bridge.InactiveRegistry
	listener    *exthost.Listener
}

// New builds the URI service for cfg. Nothing is started until the runnables
// are run.
func New(cfg *config.Config, opts ...Option) (*Relay, error) {
	if cfg == nil {
		return nil, ErrMissingConfig
	}

	r := &Relay{
		cfg:    cfg,
		ctx:    context.Background(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.buildService(); err != nil {
		return nil, err
	}
	if err := r.buildMailbox(); err != nil {
		return nil, err
	}
	if cfg.Bridge.Enabled() {
		if err := r.buildBridge(); err != nil {
			return nil, errors.Join(err, r.Close())
		}
	}
	return r, nil
}

func (r *Relay) componentLogger(group string) *slog.Logger {
	return r.logger.WithGroup(group)
}

func (r *Relay) buildService() error {
	dispatcher := urlservice.NewDispatcher(
		urlservice.WithLogger(r.componentLogger("urlservice.Dispatcher")),
	)

	if !r.cfg.IsWeb() {
		factory, err := urlservice.NewNativeFactory(r.cfg.Product.URLProtocol)
		if err != nil {
			return fmt.Errorf("failed to create native factory: %w", err)
		}
		r.service = urlservice.NewService(dispatcher, factory)
		return nil
	}

	pollerOpts := append(
		[]poller.Option{poller.WithInterval(r.cfg.Poller.Interval.AsDuration())},
		r.pollerOpts...,
	)
	group, err := poller.NewGroup(r.cfg.Deployment.Origin, dispatcher,
		poller.WithGroupLogger(r.componentLogger("poller.Group")),
		poller.WithContext(r.ctx),
		poller.WithPollerOptions(pollerOpts...),
	)
	if err != nil {
		return fmt.Errorf("failed to create poller group: %w", err)
	}
	r.group = group

	factory, err := urlservice.NewBrowserFactory(
		r.cfg.Deployment.Origin,
		group,
		r.componentLogger("urlservice.BrowserFactory"),
	)
	if err != nil {
		return fmt.Errorf("failed to create browser factory: %w", err)
	}
	r.service = urlservice.NewService(dispatcher, factory)
	return nil
}

func (r *Relay) buildMailbox() error {
	r.store = mailbox.NewStore(r.cfg.Mailbox.Capacity, r.cfg.Mailbox.TTL.AsDuration())
	handlers := mailbox.NewHandlers(
		r.store,
		r.cfg.Product.URLProtocol,
		r.componentLogger("mailbox.Handlers"),
	)

	server, err := mailbox.NewServer(r.cfg.Mailbox.Listen, handlers,
		mailbox.WithLogger(r.componentLogger("mailbox.Server")),
	)
	if err != nil {
		return fmt.Errorf("failed to create mailbox server: %w", err)
	}
	r.mailbox = server
	return nil
}

func (r *Relay) buildBridge() error {
	conn := r.extHostConn
	if conn == nil {
		c, err := grpc.NewClient(
			r.cfg.Bridge.ExtHost,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return fmt.Errorf("failed to create extension host client: %w", err)
		}
		r.conn = c
		conn = c
	}

	var inactiveOpts []bridge.InactiveOption
	inactiveOpts = append(inactiveOpts, bridge.WithInactiveLogger(r.componentLogger("bridge.InactiveRegistry")))
	if r.activator != nil {
		inactiveOpts = append(inactiveOpts, bridge.WithActivator(r.activator))
	}
	r.inactive = bridge.NewInactiveRegistry(r.cfg.Deployment.Extensions, inactiveOpts...)

	b, err := bridge.New(exthost.NewExtHostClient(conn), r.service.Dispatcher,
		bridge.WithLogger(r.componentLogger("bridge")),
		bridge.WithDeploymentMode(r.cfg.Deployment.Mode),
		bridge.WithScheme(r.cfg.Product.URLProtocol),
		bridge.WithInactiveHandlers(r.inactive),
	)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}
	r.bridge = b

	// registered before any bridge handler, so it is asked first; it declines
	// URIs for extensions that have a live handler
	r.service.RegisterHandler(r.inactive)

	listener, err := exthost.NewListener(
		r.cfg.Bridge.Listen,
		r.componentLogger("exthost.Listener"),
		exthost.NewMainThreadServer(b, r.componentLogger("exthost.MainThreadServer")),
	)
	if err != nil {
		return fmt.Errorf("failed to create bridge listener: %w", err)
	}
	r.listener = listener
	return nil
}

// Service returns the dispatcher and factory for the configured mode.
func (r *Relay) Service() *urlservice.Service {
	return r.service
}

// Store returns the mailbox store behind the mailbox server.
func (r *Relay) Store() *mailbox.Store {
	return r.store
}

// Group returns the poller group, or nil outside web mode.
func (r *Relay) Group() *poller.Group {
	return r.group
}

// Bridge returns the extension bridge, or ErrBridgeDisabled.
func (r *Relay) Bridge() (*bridge.Bridge, error) {
	if r.bridge == nil {
		return nil, ErrBridgeDisabled
	}
	return r.bridge, nil
}

// Inactive returns the registry of declared extensions, or nil when the bridge
// is disabled.
func (r *Relay) Inactive() *bridge.InactiveRegistry {
	return r.inactive
}

// Runnables returns what the supervisor should run, in start order.
func (r *Relay) Runnables() []supervisor.Runnable {
	runnables := []supervisor.Runnable{r.mailbox}
	if r.group != nil {
		runnables = append(runnables, r.group)
	}
	if r.listener != nil {
		runnables = append(runnables, r.listener)
	}
	return runnables
}

// Close disposes the bridge handlers and closes the extension host connection.
func (r *Relay) Close() error {
	if r.bridge != nil {
		r.bridge.Close()
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("failed to close extension host connection: %w", err)
		}
		r.conn = nil
	}
	return nil
}
