package exthost

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The bridge protocol has no generated stubs. Both services take and return
// well-known types, so the service descriptors are declared by hand.
const (
	MainThreadServiceName = "urlrelay.bridge.v1.MainThreadURLs"
	ExtHostServiceName    = "urlrelay.bridge.v1.ExtHostURLs"

	methodRegister       = "/" + MainThreadServiceName + "/RegisterURIHandler"
	methodUnregister     = "/" + MainThreadServiceName + "/UnregisterURIHandler"
	methodCreateApp      = "/" + MainThreadServiceName + "/CreateAppURI"
	methodHandleExternal = "/" + ExtHostServiceName + "/HandleExternalURI"
)

type mainThreadURLsServer interface {
	RegisterURIHandler(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	UnregisterURIHandler(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	CreateAppURI(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type extHostURLsServer interface {
	HandleExternalURI(context.Context, *structpb.Struct) (*emptypb.Empty, error)
}

// MainThreadServiceDesc describes the calls the extension host makes into the
// main side.
var MainThreadServiceDesc = grpc.ServiceDesc{
	ServiceName: MainThreadServiceName,
	HandlerType: (*mainThreadURLsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RegisterURIHandler",
			Handler: unaryHandler(methodRegister, func(srv any, ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
				return srv.(mainThreadURLsServer).RegisterURIHandler(ctx, in)
			}),
		},
		{
			MethodName: "UnregisterURIHandler",
			Handler: unaryHandler(methodUnregister, func(srv any, ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
				return srv.(mainThreadURLsServer).UnregisterURIHandler(ctx, in)
			}),
		},
		{
			MethodName: "CreateAppURI",
			Handler: unaryHandler(methodCreateApp, func(srv any, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return srv.(mainThreadURLsServer).CreateAppURI(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// ExtHostServiceDesc describes the call the main side makes into the
// extension host.
var ExtHostServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtHostServiceName,
	HandlerType: (*extHostURLsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "HandleExternalURI",
			Handler: unaryHandler(methodHandleExternal, func(srv any, ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
				return srv.(extHostURLsServer).HandleExternalURI(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler decodes the request struct and runs call through the server
// interceptor chain, the same way generated handlers do.
func unaryHandler[Resp proto.Message](
	fullMethod string,
	call func(srv any, ctx context.Context, in *structpb.Struct) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
