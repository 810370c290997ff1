package urlservice_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testURI = uri.MustParse("myapp://ext1/a?b=1#f")

func TestDispatcher_Open_EmptyRegistry(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()
	assert.False(t, d.Open(context.Background(), testURI))
}

func TestDispatcher_Open_FirstAcceptWins(t *testing.T) {
	t.Parallel()

	const count = 5
	for accepting := range count {
		t.Run(fmt.Sprintf("accepting handler at %d", accepting), func(t *testing.T) {
			t.Parallel()
			d := urlservice.NewDispatcher()

			handlers := make([]*mocks.MockHandler, count)
			for i := range count {
				handlers[i] = mocks.NewMockHandler(i == accepting, nil)
				d.RegisterHandler(handlers[i])
			}

			assert.True(t, d.Open(context.Background(), testURI))

			for i, h := range handlers {
				if i <= accepting {
					h.AssertNumberOfCalls(t, "HandleURL", 1)
				} else {
					h.AssertNotCalled(t, "HandleURL", mock.Anything, mock.Anything)
				}
			}
		})
	}
}

func TestDispatcher_Open_NoneAccept(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	handlers := []*mocks.MockHandler{
		mocks.NewMockHandler(false, nil),
		mocks.NewMockHandler(false, errors.New("boom")),
		mocks.NewMockHandler(false, nil),
		mocks.NewMockHandler(true, errors.New("error wins over accept")),
	}
	for _, h := range handlers {
		d.RegisterHandler(h)
	}

	assert.False(t, d.Open(context.Background(), testURI))
	for _, h := range handlers {
		h.AssertNumberOfCalls(t, "HandleURL", 1)
		h.AssertCalled(t, "HandleURL", mock.Anything, testURI)
	}
}

func TestDispatcher_Open_FailingHandlerDoesNotBlock(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	d.RegisterHandler(mocks.NewMockHandler(false, errors.New("broken")))
	d.RegisterHandler(urlservice.HandlerFunc(func(context.Context, uri.URI) (bool, error) {
		panic("handler exploded")
	}))
	last := mocks.NewMockHandler(true, nil)
	d.RegisterHandler(last)

	assert.True(t, d.Open(context.Background(), testURI))
	last.AssertNumberOfCalls(t, "HandleURL", 1)
}

func TestDispatcher_Open_DisposedHandlerNotInvoked(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	removed := mocks.NewMockHandler(true, nil)
	kept := mocks.NewMockHandler(true, nil)
	token := d.RegisterHandler(removed)
	d.RegisterHandler(kept)

	token.Dispose()
	assert.True(t, d.Open(context.Background(), testURI))
	removed.AssertNotCalled(t, "HandleURL", mock.Anything, mock.Anything)
	kept.AssertNumberOfCalls(t, "HandleURL", 1)
}

func TestDispatcher_Open_SnapshotAtCallTime(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	late := mocks.NewMockHandler(true, nil)
	d.RegisterHandler(urlservice.HandlerFunc(func(context.Context, uri.URI) (bool, error) {
		d.RegisterHandler(late)
		return false, nil
	}))

	assert.False(t, d.Open(context.Background(), testURI))
	late.AssertNotCalled(t, "HandleURL", mock.Anything, mock.Anything)

	// the next dispatch sees it
	assert.True(t, d.Open(context.Background(), testURI))
}

func TestDispatcher_Open_Sequential(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	var order []int
	inFlight := 0
	for i := range 3 {
		d.RegisterHandler(urlservice.HandlerFunc(func(context.Context, uri.URI) (bool, error) {
			inFlight++
			defer func() { inFlight-- }()
			require.Equal(t, 1, inFlight)
			order = append(order, i)
			return false, nil
		}))
	}

	assert.False(t, d.Open(context.Background(), testURI))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestDispatcher_Open_ContextCanceled(t *testing.T) {
	t.Parallel()
	d := urlservice.NewDispatcher()

	ctx, cancel := context.WithCancel(context.Background())
	d.RegisterHandler(urlservice.HandlerFunc(func(context.Context, uri.URI) (bool, error) {
		cancel()
		return false, nil
	}))
	next := mocks.NewMockHandler(true, nil)
	d.RegisterHandler(next)

	assert.False(t, d.Open(ctx, testURI))
	next.AssertNotCalled(t, "HandleURL", mock.Anything, mock.Anything)
}

func TestDispatcher_WithRegistry(t *testing.T) {
	t.Parallel()
	reg := urlservice.NewRegistry()
	reg.Register(mocks.NewMockHandler(true, nil))

	d := urlservice.NewDispatcher(urlservice.WithRegistry(reg))
	assert.True(t, d.Open(context.Background(), testURI))
}
