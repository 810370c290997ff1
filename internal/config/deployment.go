package config

import (
	"fmt"
	"strings"
)

// DeploymentMode selects how callback URIs reach the process.
type DeploymentMode string

const (
	// ModeNative is a desktop process that the OS hands custom-scheme URIs to.
	ModeNative DeploymentMode = "native"

	// ModeWeb is a page-hosted process that fetches callbacks from the server
	// mailbox instead.
	ModeWeb DeploymentMode = "web"
)

func (m DeploymentMode) String() string {
	return string(m)
}

// IsValid reports whether m is a known mode.
func (m DeploymentMode) IsValid() bool {
	return m == ModeNative || m == ModeWeb
}

// ModeFromString parses a mode name. An empty string means native.
func ModeFromString(s string) (DeploymentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "desktop":
		return ModeNative, nil
	case "web", "browser":
		return ModeWeb, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for the TOML decoder.
func (m *DeploymentMode) UnmarshalText(text []byte) error {
	parsed, err := ModeFromString(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
