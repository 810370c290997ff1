package poller

import (
	"context"
	"errors"
	"log/slog"
)

// DefaultHistorySize caps the log records each poller keeps for replay.
const DefaultHistorySize = 64

// historyHandler records every level into history and forwards to next only
// what next has enabled. A poller that fails can then replay the debug trail
// that the live log filtered out.
type historyHandler struct {
	history slog.Handler
	next    slog.Handler
}

func (h *historyHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

func (h *historyHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.history.Handle(ctx, r)
	if h.next.Enabled(ctx, r.Level) {
		err = errors.Join(err, h.next.Handle(ctx, r.Clone()))
	}
	return err
}

func (h *historyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &historyHandler{history: h.history.WithAttrs(attrs), next: h.next.WithAttrs(attrs)}
}

func (h *historyHandler) WithGroup(name string) slog.Handler {
	return &historyHandler{history: h.history.WithGroup(name), next: h.next.WithGroup(name)}
}

// replayHandler raises replayed records to at least level and marks them.
type replayHandler struct {
	next  slog.Handler
	level slog.Level
}

// replayAt wraps next so that replayed history shows up at level.
func replayAt(next slog.Handler, level slog.Level) slog.Handler {
	return &replayHandler{next: next.WithAttrs([]slog.Attr{slog.Bool("replay", true)}), level: level}
}

func (h *replayHandler) Enabled(ctx context.Context, _ slog.Level) bool {
	return h.next.Enabled(ctx, h.level)
}

func (h *replayHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < h.level {
		r.Level = h.level
	}
	return h.next.Handle(ctx, r)
}

func (h *replayHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &replayHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *replayHandler) WithGroup(name string) slog.Handler {
	return &replayHandler{next: h.next.WithGroup(name), level: h.level}
}
