package bridge

import (
	"context"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/stretchr/testify/mock"
)

type mockProxy struct {
	mock.Mock
}

func (m *mockProxy) HandleExternalURI(ctx context.Context, handle int32, u uri.URI) error {
	args := m.Called(ctx, handle, u)
	return args.Error(0)
}

func newMockProxy(err error) *mockProxy {
	m := &mockProxy{}
	m.On("HandleExternalURI", mock.Anything, mock.Anything, mock.Anything).Return(err)
	return m
}
