package exthost

import (
	"fmt"
	"math"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldHandle      = "handle"
	fieldExtensionID = "extension_id"
	fieldURI         = "uri"
	fieldPath        = "path"
	fieldQuery       = "query"
	fieldFragment    = "fragment"
)

// encodeURI marshals u as a struct with the same keys as uri.Components.
func encodeURI(u uri.URI) *structpb.Struct {
	c := u.ToComponents()
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"scheme":      structpb.NewStringValue(c.Scheme),
		"authority":   structpb.NewStringValue(c.Authority),
		fieldPath:     structpb.NewStringValue(c.Path),
		fieldQuery:    structpb.NewStringValue(c.Query),
		fieldFragment: structpb.NewStringValue(c.Fragment),
	}}
}

func decodeURI(s *structpb.Struct) (uri.URI, error) {
	if s == nil {
		return uri.URI{}, fmt.Errorf("%w: missing uri", ErrInvalidRequest)
	}
	u, err := uri.Revive(uri.Components{
		Scheme:    stringField(s, "scheme"),
		Authority: stringField(s, "authority"),
		Path:      stringField(s, fieldPath),
		Query:     stringField(s, fieldQuery),
		Fragment:  stringField(s, fieldFragment),
	})
	if err != nil {
		return uri.URI{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return u, nil
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// handleField reads an int32 handle. Struct numbers are float64, so fractions
// and out of range values are rejected.
func handleField(s *structpb.Struct) (int32, error) {
	v, ok := s.GetFields()[fieldHandle]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidRequest, fieldHandle)
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidRequest, fieldHandle)
	}

	n := v.GetNumberValue()
	if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s %v is not an int32", ErrInvalidRequest, fieldHandle, n)
	}
	return int32(n), nil
}

func handleValue(handle int32) *structpb.Value {
	return structpb.NewNumberValue(float64(handle))
}
