package exthost

import (
	"errors"

	"github.com/atlanticdynamic/urlrelay/internal/bridge"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrInvalidRequest is returned when a request struct is missing a field or
	// carries the wrong type
	ErrInvalidRequest = errors.New("invalid bridge request")

	// ErrUnknownHandle is returned when the extension host has no handler for a handle
	ErrUnknownHandle = errors.New("unknown URI handler handle")
)

// toStatus maps bridge errors to gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, bridge.ErrEmptyExtensionID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnknownHandle):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, bridge.ErrBridgeClosed):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
