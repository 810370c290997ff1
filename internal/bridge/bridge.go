// Package bridge represents URI handlers that live in the extension host as
// local handlers of the main-side dispatcher.
//
// Each remote handler is known by an opaque numeric handle and the identifier
// of the extension that owns it. The bridge keeps a handle table so that an
// unregistration from the extension host can find and dispose the matching
// dispatcher entry. Closing the bridge disposes every entry it still holds.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/config"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
)

// Registrar accepts local handlers, normally the urlservice.Dispatcher.
type Registrar interface {
	RegisterHandler(h urlservice.Handler) urlservice.Disposable
}

// InactiveHandlers tracks handlers by extension so that URIs for extensions
// that are not running can wake them.
type InactiveHandlers interface {
	RegisterExtensionHandler(extensionID string, h urlservice.Handler)
	UnregisterExtensionHandler(extensionID string)
}

type handlerEntry struct {
	extensionID string
	handler     urlservice.Handler
	disposable  urlservice.Disposable
}

// Bridge is the main-side half of the extension URI protocol.
type Bridge struct {
	proxy     Proxy
	registrar Registrar
	inactive  InactiveHandlers
	mode      config.DeploymentMode
	scheme    string
	native    *urlservice.NativeFactory
	logger    *slog.Logger

	mu       sync.Mutex
	handlers map[int32]handlerEntry
	closed   bool
}

// New creates a Bridge forwarding to proxy and registering with registrar.
func New(proxy Proxy, registrar Registrar, opts ...Option) (*Bridge, error) {
	if proxy == nil {
		return nil, ErrMissingProxy
	}
	if registrar == nil {
		return nil, ErrMissingRegistrar
	}

	b := &Bridge{
		proxy:     proxy,
		registrar: registrar,
		mode:      config.ModeNative,
		scheme:    config.DefaultURLProtocol,
		logger:    slog.Default().WithGroup("bridge"),
		handlers:  make(map[int32]handlerEntry),
	}
	for _, opt := range opts {
		opt(b)
	}

	native, err := urlservice.NewNativeFactory(b.scheme)
	if err != nil {
		return nil, fmt.Errorf("failed to create native factory: %w", err)
	}
	b.native = native

	return b, nil
}

// RegisterURIHandler installs a local stand-in for the remote handler known as
// handle. A handle that is already registered is replaced.
func (b *Bridge) RegisterURIHandler(ctx context.Context, handle int32, extensionID string) error {
	if extensionID == "" {
		return ErrEmptyExtensionID
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBridgeClosed
	}

	if old, ok := b.handlers[handle]; ok {
		b.logger.Warn("Replacing URI handler", "handle", handle, "old", old.extensionID, "new", extensionID)
		b.dropLocked(handle, old)
	}

	h := &extensionHandler{proxy: b.proxy, handle: handle, extensionID: extensionID}
	b.handlers[handle] = handlerEntry{
		extensionID: extensionID,
		handler:     h,
		disposable:  b.registrar.RegisterHandler(h),
	}
	if b.inactive != nil {
		b.inactive.RegisterExtensionHandler(extensionID, h)
	}

	b.logger.DebugContext(ctx, "Registered URI handler", "handle", handle, "extension", extensionID)
	return nil
}

// UnregisterURIHandler removes the handler known as handle. Unknown handles are
// ignored.
func (b *Bridge) UnregisterURIHandler(ctx context.Context, handle int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.handlers[handle]
	if !ok {
		b.logger.DebugContext(ctx, "Ignoring unregister for unknown handle", "handle", handle)
		return nil
	}

	b.dropLocked(handle, e)
	b.logger.DebugContext(ctx, "Unregistered URI handler", "handle", handle, "extension", e.extensionID)
	return nil
}

// dropLocked removes handle. The extension stays live for the inactive
// registry while it still owns another handle.
func (b *Bridge) dropLocked(handle int32, e handlerEntry) {
	delete(b.handlers, handle)
	e.disposable.Dispose()

	if b.inactive == nil {
		return
	}
	for _, other := range b.handlers {
		if ExtensionIDEquals(other.extensionID, e.extensionID) {
			b.inactive.RegisterExtensionHandler(other.extensionID, other.handler)
			return
		}
	}
	b.inactive.UnregisterExtensionHandler(e.extensionID)
}

// CreateAppURI builds a callback URI addressed to extensionID for the
// configured deployment mode.
func (b *Bridge) CreateAppURI(ctx context.Context, extensionID string, opts *urlservice.CreateOptions) (uri.URI, error) {
	if extensionID == "" {
		return uri.URI{}, ErrEmptyExtensionID
	}

	switch b.mode {
	case config.ModeWeb:
		return webAppURI(extensionID, opts)
	default:
		return b.native.Create(extensionID, opts)
	}
}

// Handles returns the number of registered remote handlers.
func (b *Bridge) Handles() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Close disposes every registered handler. Further registrations fail with
// ErrBridgeClosed. Calling Close again does nothing.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for handle, e := range b.handlers {
		e.disposable.Dispose()
		delete(b.handlers, handle)
	}
	b.logger.Debug("Bridge closed")
}
