package urlservice

// Service pairs a Dispatcher with the Factory for the current deployment mode.
type Service struct {
	*Dispatcher
	Factory
}

// NewService combines a dispatcher and a factory.
func NewService(d *Dispatcher, f Factory) *Service {
	if d == nil {
		d = NewDispatcher()
	}
	return &Service{Dispatcher: d, Factory: f}
}

// NewNativeService creates a Service that builds custom-scheme URIs.
func NewNativeService(scheme string, opts ...Option) (*Service, error) {
	f, err := NewNativeFactory(scheme)
	if err != nil {
		return nil, err
	}
	return NewService(NewDispatcher(opts...), f), nil
}
