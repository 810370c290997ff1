package config

import "errors"

var (
	ErrFailedToLoadConfig     = errors.New("failed to load config")
	ErrFailedToValidateConfig = errors.New("failed to validate config")

	ErrInvalidURLProtocol = errors.New("invalid product URL protocol")
	ErrInvalidMode        = errors.New("invalid deployment mode")
	ErrMissingOrigin      = errors.New("web deployment requires an origin")
	ErrInvalidOrigin      = errors.New("invalid origin")
	ErrInvalidInterval    = errors.New("poller interval must be positive")
	ErrMissingListen      = errors.New("mailbox listen address is empty")
	ErrInvalidCapacity    = errors.New("mailbox capacity must be positive")
	ErrInvalidTTL         = errors.New("mailbox ttl must be positive")
	ErrMissingExtHost     = errors.New("bridge listen is set but exthost address is empty")
)
