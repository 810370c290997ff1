package relay

import "errors"

var (
	ErrMissingConfig  = errors.New("config is required")
	ErrBridgeDisabled = errors.New("bridge is not enabled in the config")
)
