// Package config loads the TOML configuration of urlrelay.
//
// Every key is optional. Missing keys keep the values from Default, and the
// result is validated before it is returned. Addresses, the origin, extension
// IDs and the log output may reference environment variables as ${VAR} or
// ${VAR:default}.
package config

import (
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/config/logs"
)

const (
	// DefaultURLProtocol is the product URL scheme when none is configured.
	DefaultURLProtocol = "urlrelay"

	DefaultPollInterval    = 500 * time.Millisecond
	DefaultMailboxListen   = "localhost:8080"
	DefaultMailboxCapacity = 16
	DefaultMailboxTTL      = 5 * time.Minute
)

// Config is the root of the configuration file.
type Config struct {
	Product    Product     `toml:"product"`
	Deployment Deployment  `toml:"deployment"`
	Poller     Poller      `toml:"poller"`
	Mailbox    Mailbox     `toml:"mailbox"`
	Bridge     Bridge      `toml:"bridge"`
	Logging    logs.Config `toml:"logging"`
}

// Product holds product-level settings.
type Product struct {
	// URLProtocol is the custom scheme registered with the OS, without "://".
	URLProtocol string `toml:"url_protocol"`
}

// Deployment describes where the process runs.
type Deployment struct {
	Mode DeploymentMode `toml:"mode"`

	// Origin is the scheme://host[:port] of the page in web mode.
	Origin string `toml:"origin" interpolate:"env"`

	// Extensions declare URI handlers before they are running, so URIs for
	// them can be held until they register.
	Extensions []string `toml:"extensions" interpolate:"env"`
}

// Poller configures the callback poller used in web mode.
type Poller struct {
	Interval Duration `toml:"interval"`
}

// Mailbox configures the callback mailbox server.
type Mailbox struct {
	Listen   string   `toml:"listen" interpolate:"env"`
	Capacity int      `toml:"capacity"`
	TTL      Duration `toml:"ttl"`
}

// Bridge configures the gRPC transport to an extension host. It is off
// unless Listen is set.
type Bridge struct {
	// Listen is where MainThreadURLs is served, "host:port" or "unix:/path".
	Listen string `toml:"listen" interpolate:"env"`

	// ExtHost is the address of the extension host's ExtHostURLs service.
	ExtHost string `toml:"exthost" interpolate:"env"`
}

// Enabled reports whether the bridge transport should run.
func (b Bridge) Enabled() bool {
	return b.Listen != ""
}

// Default returns a native-mode configuration with every default filled in.
func Default() *Config {
	return &Config{
		Product: Product{URLProtocol: DefaultURLProtocol},
		Deployment: Deployment{
			Mode: ModeNative,
		},
		Poller: Poller{Interval: Duration(DefaultPollInterval)},
		Mailbox: Mailbox{
			Listen:   DefaultMailboxListen,
			Capacity: DefaultMailboxCapacity,
			TTL:      Duration(DefaultMailboxTTL),
		},
		Logging: logs.Default(),
	}
}

// IsWeb reports whether the configuration selects web mode.
func (c *Config) IsWeb() bool {
	return c.Deployment.Mode == ModeWeb
}
