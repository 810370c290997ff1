package poller

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultInterval is the fixed delay between two empty fetches.
const DefaultInterval = 500 * time.Millisecond

// HTTPClient is the request client used to reach the fetch-callback endpoint.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type settings struct {
	interval    time.Duration
	client      HTTPClient
	logHandler  slog.Handler
	historySize int
}

func defaultSettings() settings {
	return settings{
		interval:    DefaultInterval,
		client:      http.DefaultClient,
		logHandler:  slog.Default().Handler(),
		historySize: DefaultHistorySize,
	}
}

// Option configures pollers, either directly or through a Group.
type Option func(*settings)

// WithInterval sets the delay between empty fetches.
func WithInterval(interval time.Duration) Option {
	return func(s *settings) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithHTTPClient sets the request client.
func WithHTTPClient(client HTTPClient) Option {
	return func(s *settings) {
		if client != nil {
			s.client = client
		}
	}
}

// WithLogHandler sets the handler that poller logs are forwarded to.
func WithLogHandler(handler slog.Handler) Option {
	return func(s *settings) {
		if handler != nil {
			s.logHandler = handler
		}
	}
}

// WithHistorySize caps the log records a poller keeps for replay.
func WithHistorySize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.historySize = n
		}
	}
}
