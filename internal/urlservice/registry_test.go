package urlservice

import (
	"context"
	"testing"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pointerHandler struct{ name string }

func (h *pointerHandler) HandleURL(context.Context, uri.URI) (bool, error) { return false, nil }

func noop(context.Context, uri.URI) (bool, error) { return false, nil }

func TestRegistry_RegisterOrder(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	a, b, c := &pointerHandler{"a"}, &pointerHandler{"b"}, &pointerHandler{"c"}
	r.Register(a)
	r.Register(b)
	r.Register(c)

	assert.Equal(t, []Handler{a, b, c}, r.Snapshot())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Dispose(t *testing.T) {
	t.Parallel()

	t.Run("removes exactly that handler", func(t *testing.T) {
		r := NewRegistry()
		a, b := &pointerHandler{"a"}, &pointerHandler{"b"}
		da := r.Register(a)
		r.Register(b)

		da.Dispose()
		assert.Equal(t, []Handler{b}, r.Snapshot())
	})

	t.Run("is idempotent", func(t *testing.T) {
		r := NewRegistry()
		a, b := &pointerHandler{"a"}, &pointerHandler{"b"}
		da := r.Register(a)
		r.Register(b)

		da.Dispose()
		da.Dispose()
		assert.Equal(t, []Handler{b}, r.Snapshot())
	})

	t.Run("empty registry", func(t *testing.T) {
		r := NewRegistry()
		d := r.Register(HandlerFunc(noop))
		d.Dispose()
		assert.NotPanics(t, d.Dispose)
		assert.Empty(t, r.Snapshot())
	})
}

func TestRegistry_SameHandlerTwice(t *testing.T) {
	t.Parallel()

	t.Run("comparable handler is stored once", func(t *testing.T) {
		r := NewRegistry()
		a := &pointerHandler{"a"}
		first := r.Register(a)
		second := r.Register(a)
		assert.Equal(t, 1, r.Len())

		second.Dispose()
		assert.Equal(t, 0, r.Len())
		assert.NotPanics(t, first.Dispose)
	})

	t.Run("handler funcs are distinct entries", func(t *testing.T) {
		r := NewRegistry()
		f := HandlerFunc(noop)
		r.Register(f)
		r.Register(f)
		assert.Equal(t, 2, r.Len())
	})
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	a := &pointerHandler{"a"}
	da := r.Register(a)

	snap := r.Snapshot()
	r.Register(&pointerHandler{"b"})
	da.Dispose()

	require.Len(t, snap, 1)
	assert.Same(t, a, snap[0])
}
