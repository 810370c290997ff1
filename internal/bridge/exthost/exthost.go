// Package exthost carries the extension URI protocol between the main side
// and the extension host over gRPC.
//
// The main side serves MainThreadURLs (register, unregister, create app URI)
// and the extension host serves ExtHostURLs (deliver a URI to a handle).
// Requests are structpb.Struct values so no generated code is needed.
package exthost

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/atlanticdynamic/urlrelay/internal/bridge"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// URIHandlerFunc is an extension's URI handler inside the extension host.
type URIHandlerFunc func(ctx context.Context, u uri.URI) error

var (
	_ bridge.Proxy      = (*ExtHost)(nil)
	_ bridge.Proxy      = (*ExtHostClient)(nil)
	_ extHostURLsServer = (*ExtHostServer)(nil)
)

// ExtHost is the handle table of the extension host side.
type ExtHost struct {
	mu       sync.RWMutex
	handlers map[int32]URIHandlerFunc
}

// NewExtHost creates an empty ExtHost.
func NewExtHost() *ExtHost {
	return &ExtHost{handlers: make(map[int32]URIHandlerFunc)}
}

// RegisterHandler binds fn to handle, replacing any earlier binding.
func (e *ExtHost) RegisterHandler(handle int32, fn URIHandlerFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[handle] = fn
}

// UnregisterHandler drops handle.
func (e *ExtHost) UnregisterHandler(handle int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handlers, handle)
}

// HandleExternalURI runs the handler bound to handle.
func (e *ExtHost) HandleExternalURI(ctx context.Context, handle int32, u uri.URI) error {
	e.mu.RLock()
	fn, ok := e.handlers[handle]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, handle)
	}
	return fn(ctx, u)
}

// ExtHostServer serves ExtHostURLs from an ExtHost.
type ExtHostServer struct {
	host   *ExtHost
	logger *slog.Logger
}

// NewExtHostServer creates an ExtHostServer for host.
func NewExtHostServer(host *ExtHost, logger *slog.Logger) *ExtHostServer {
	if logger == nil {
		logger = slog.Default().WithGroup("exthost.ExtHostServer")
	}
	return &ExtHostServer{host: host, logger: logger}
}

// Register adds the service to s.
func (e *ExtHostServer) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&ExtHostServiceDesc, e)
}

// HandleExternalURI handles {handle, uri}.
func (e *ExtHostServer) HandleExternalURI(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	handle, err := handleField(in)
	if err != nil {
		return nil, toStatus(err)
	}
	u, err := decodeURI(in.GetFields()[fieldURI].GetStructValue())
	if err != nil {
		return nil, toStatus(err)
	}

	if err := e.host.HandleExternalURI(ctx, handle, u); err != nil {
		e.logger.Warn("Extension URI handler failed", "handle", handle, "uri", u.String(), "error", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// ExtHostClient forwards URIs to a remote extension host. It is the
// bridge.Proxy of a main side running in another process.
type ExtHostClient struct {
	conn grpc.ClientConnInterface
}

// NewExtHostClient creates a client on conn.
func NewExtHostClient(conn grpc.ClientConnInterface) *ExtHostClient {
	return &ExtHostClient{conn: conn}
}

// HandleExternalURI implements bridge.Proxy.
func (c *ExtHostClient) HandleExternalURI(ctx context.Context, handle int32, u uri.URI) error {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldHandle: handleValue(handle),
		fieldURI:    structpb.NewStructValue(encodeURI(u)),
	}}
	return c.conn.Invoke(ctx, methodHandleExternal, req, &emptypb.Empty{})
}
