package exthost

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/urlrelay/internal/bridge"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// MainThread is the main-side surface the extension host drives.
// *bridge.Bridge and *MainThreadClient both implement it.
type MainThread interface {
	RegisterURIHandler(ctx context.Context, handle int32, extensionID string) error
	UnregisterURIHandler(ctx context.Context, handle int32) error
	CreateAppURI(ctx context.Context, extensionID string, opts *urlservice.CreateOptions) (uri.URI, error)
}

var (
	_ MainThread           = (*bridge.Bridge)(nil)
	_ MainThread           = (*MainThreadClient)(nil)
	_ mainThreadURLsServer = (*MainThreadServer)(nil)
)

// MainThreadServer serves MainThreadURLs from a MainThread.
type MainThreadServer struct {
	main   MainThread
	logger *slog.Logger
}

// NewMainThreadServer creates a MainThreadServer for main.
func NewMainThreadServer(main MainThread, logger *slog.Logger) *MainThreadServer {
	if logger == nil {
		logger = slog.Default().WithGroup("exthost.MainThreadServer")
	}
	return &MainThreadServer{main: main, logger: logger}
}

// Register adds the service to s.
func (m *MainThreadServer) Register(s grpc.ServiceRegistrar) {
	s.RegisterService(&MainThreadServiceDesc, m)
}

// RegisterURIHandler handles {handle, extension_id}.
func (m *MainThreadServer) RegisterURIHandler(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	handle, err := handleField(in)
	if err != nil {
		return nil, toStatus(err)
	}
	extensionID := stringField(in, fieldExtensionID)

	if err := m.main.RegisterURIHandler(ctx, handle, extensionID); err != nil {
		m.logger.Warn("Register URI handler failed", "handle", handle, "extension", extensionID, "error", err)
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// UnregisterURIHandler handles {handle}.
func (m *MainThreadServer) UnregisterURIHandler(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	handle, err := handleField(in)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := m.main.UnregisterURIHandler(ctx, handle); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// CreateAppURI handles {extension_id, path, query, fragment} and answers with
// the URI struct.
func (m *MainThreadServer) CreateAppURI(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	opts := &urlservice.CreateOptions{
		Path:     stringField(in, fieldPath),
		Query:    stringField(in, fieldQuery),
		Fragment: stringField(in, fieldFragment),
	}

	u, err := m.main.CreateAppURI(ctx, stringField(in, fieldExtensionID), opts)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeURI(u), nil
}

// MainThreadClient calls MainThreadURLs from the extension host side.
type MainThreadClient struct {
	conn grpc.ClientConnInterface
}

// NewMainThreadClient creates a client on conn.
func NewMainThreadClient(conn grpc.ClientConnInterface) *MainThreadClient {
	return &MainThreadClient{conn: conn}
}

func (c *MainThreadClient) RegisterURIHandler(ctx context.Context, handle int32, extensionID string) error {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldHandle:      handleValue(handle),
		fieldExtensionID: structpb.NewStringValue(extensionID),
	}}
	return c.conn.Invoke(ctx, methodRegister, req, &emptypb.Empty{})
}

func (c *MainThreadClient) UnregisterURIHandler(ctx context.Context, handle int32) error {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldHandle: handleValue(handle),
	}}
	return c.conn.Invoke(ctx, methodUnregister, req, &emptypb.Empty{})
}

func (c *MainThreadClient) CreateAppURI(ctx context.Context, extensionID string, opts *urlservice.CreateOptions) (uri.URI, error) {
	fields := map[string]*structpb.Value{
		fieldExtensionID: structpb.NewStringValue(extensionID),
	}
	if opts != nil {
		fields[fieldPath] = structpb.NewStringValue(opts.Path)
		fields[fieldQuery] = structpb.NewStringValue(opts.Query)
		fields[fieldFragment] = structpb.NewStringValue(opts.Fragment)
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, methodCreateApp, &structpb.Struct{Fields: fields}, out); err != nil {
		return uri.URI{}, err
	}

	u, err := decodeURI(out)
	if err != nil {
		return uri.URI{}, fmt.Errorf("bad CreateAppURI response: %w", err)
	}
	return u, nil
}
