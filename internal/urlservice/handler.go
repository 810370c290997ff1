package urlservice

import (
	"context"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
)

// Handler inspects an incoming URI and reports whether it claimed it.
type Handler interface {
	HandleURL(ctx context.Context, u uri.URI) (bool, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, u uri.URI) (bool, error)

// HandleURL calls f(ctx, u).
func (f HandlerFunc) HandleURL(ctx context.Context, u uri.URI) (bool, error) {
	return f(ctx, u)
}

// Disposable releases a registration. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a function to Disposable. The function runs at most once.
func DisposeFunc(fn func()) Disposable {
	return &onceDisposable{fn: fn}
}
