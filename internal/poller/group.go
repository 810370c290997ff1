package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/finitestate"
	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Group)(nil)
	_ supervisor.Stateable = (*Group)(nil)
	_ supervisor.Readiness = (*Group)(nil)
)

// Group owns every poller started for one server origin. All pollers share the
// group's context, so stopping the group cancels any poller still waiting.
type Group struct {
	origin     string
	dispatcher Dispatcher
	opts       []Option
	logger     *slog.Logger
	fsm        finitestate.Machine

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[uuid.UUID]*Poller
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupLogger sets a custom logger for the Group.
func WithGroupLogger(logger *slog.Logger) GroupOption {
	return func(g *Group) {
		g.logger = logger
	}
}

// WithContext sets the parent context for every poller in the Group.
func WithContext(ctx context.Context) GroupOption {
	return func(g *Group) {
		g.ctx = ctx
	}
}

// WithPollerOptions sets the options used for every poller the Group launches.
func WithPollerOptions(opts ...Option) GroupOption {
	return func(g *Group) {
		g.opts = append(g.opts, opts...)
	}
}

// NewGroup creates a Group that launches pollers against origin and hands
// delivered URIs to dispatcher.
func NewGroup(origin string, dispatcher Dispatcher, opts ...GroupOption) (*Group, error) {
	if origin == "" {
		return nil, ErrMissingOrigin
	}
	if dispatcher == nil {
		return nil, ErrMissingDispatcher
	}

	g := &Group{
		origin:     origin,
		dispatcher: dispatcher,
		logger:     slog.Default().WithGroup("poller.Group"),
		ctx:        context.Background(),
		active:     make(map[uuid.UUID]*Poller),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.ctx, g.cancel = context.WithCancel(g.ctx)

	machine, err := finitestate.New(g.logger.WithGroup("fsm").Handler())
	if err != nil {
		return nil, fmt.Errorf("failed to create state machine: %w", err)
	}
	g.fsm = machine

	return g, nil
}

// String implements the supervisor.Runnable interface
func (g *Group) String() string {
	return "poller.Group"
}

// Launch starts a new poller for identifier and returns immediately. Launching
// after the group was stopped is logged and ignored.
func (g *Group) Launch(identifier string) {
	p, err := New(g.origin, identifier, g.dispatcher, g.pollerOptions()...)
	if err != nil {
		g.logger.Error("Failed to create poller", "id", identifier, "error", err)
		return
	}

	g.mu.Lock()
	if g.ctx.Err() != nil {
		g.mu.Unlock()
		g.logger.Warn("Poller group stopped, not launching", "id", identifier)
		return
	}
	g.active[p.ID] = p
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.wg.Done()
		defer g.forget(p.ID)

		if err := p.Run(g.ctx); err != nil {
			g.logger.Warn("Poller ended with error", "id", identifier, "poller_id", p.ID, "error", err)
			if err := p.PlaybackLogs(replayAt(g.logger.Handler(), slog.LevelWarn)); err != nil {
				g.logger.Error("Failed to replay poller history", "poller_id", p.ID, "error", err)
			}
		}
	}()
}

// pollerOptions forwards the group's log handler unless one was set explicitly.
func (g *Group) pollerOptions() []Option {
	opts := make([]Option, 0, len(g.opts)+1)
	opts = append(opts, WithLogHandler(g.logger.Handler()))
	return append(opts, g.opts...)
}

func (g *Group) forget(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, id)
}

// Active returns the number of pollers still running.
func (g *Group) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.active)
}

// Run implements the supervisor.Runnable interface. It blocks until ctx is
// canceled or Stop is called, then cancels and waits for every poller.
func (g *Group) Run(ctx context.Context) error {
	if err := g.fsm.Transition(finitestate.StatusBooting); err != nil {
		return fmt.Errorf("failed to transition to booting state: %w", err)
	}
	if err := g.fsm.Transition(finitestate.StatusRunning); err != nil {
		return fmt.Errorf("failed to transition to running state: %w", err)
	}
	g.logger.Debug("Poller group running", "origin", g.origin)

	select {
	case <-ctx.Done():
		g.logger.Debug("Parent context canceled")
	case <-g.ctx.Done():
		g.logger.Debug("Group context canceled")
	}

	if g.fsm.GetState() != finitestate.StatusStopping {
		if err := g.fsm.Transition(finitestate.StatusStopping); err != nil {
			g.logger.Error("Failed to transition to stopping state", "error", err)
		}
	}

	g.stopPollers()
	g.wg.Wait()

	if err := g.fsm.Transition(finitestate.StatusStopped); err != nil {
		return fmt.Errorf("failed to transition to stopped state: %w", err)
	}
	g.logger.Info("Poller group stopped")
	return nil
}

// Stop implements the supervisor.Runnable interface
func (g *Group) Stop() {
	g.logger.Debug("Stopping poller group")
	if g.fsm.GetState() == finitestate.StatusRunning {
		if err := g.fsm.Transition(finitestate.StatusStopping); err != nil {
			g.logger.Error("Failed to transition to stopping state", "error", err)
		}
	}
	g.stopPollers()
}

// stopPollers cancels the shared context; holding mu keeps it ordered with Launch.
func (g *Group) stopPollers() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancel()
}

// Wait blocks until every launched poller has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

// GetState implements the supervisor.Stateable interface
func (g *Group) GetState() string {
	return g.fsm.GetState()
}

// GetStateChan implements the supervisor.Stateable interface
func (g *Group) GetStateChan(ctx context.Context) <-chan string {
	return g.fsm.GetStateChan(ctx)
}

// IsReady implements the supervisor.Readiness interface
func (g *Group) IsReady() bool {
	return g.fsm.GetState() == finitestate.StatusRunning
}
