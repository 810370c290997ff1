package mocks

import (
	"context"

	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/atlanticdynamic/urlrelay/internal/urlservice"
	"github.com/stretchr/testify/mock"
)

var (
	_ urlservice.Handler  = (*MockHandler)(nil)
	_ urlservice.Launcher = (*MockLauncher)(nil)
)

// MockHandler is a mock implementation of the urlservice.Handler interface
type MockHandler struct {
	mock.Mock
}

// NewMockHandler creates a MockHandler that answers every URI with accepted and err
func NewMockHandler(accepted bool, err error) *MockHandler {
	m := &MockHandler{}
	m.On("HandleURL", mock.Anything, mock.Anything).Return(accepted, err)
	return m
}

// HandleURL is a mock implementation of Handler.HandleURL
func (m *MockHandler) HandleURL(ctx context.Context, u uri.URI) (bool, error) {
	args := m.Called(ctx, u)
	return args.Bool(0), args.Error(1)
}

// MockLauncher is a mock implementation of the urlservice.Launcher interface
type MockLauncher struct {
	mock.Mock
}

// Launch is a mock implementation of Launcher.Launch
func (m *MockLauncher) Launch(identifier string) {
	m.Called(identifier)
}
