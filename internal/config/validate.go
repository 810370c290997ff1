package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks every section and joins all failures.
func (c *Config) Validate() error {
	errz := []error{}

	if !isValidScheme(c.Product.URLProtocol) {
		errz = append(errz, fmt.Errorf("%w: %q", ErrInvalidURLProtocol, c.Product.URLProtocol))
	}

	if !c.Deployment.Mode.IsValid() {
		errz = append(errz, fmt.Errorf("%w: %q", ErrInvalidMode, c.Deployment.Mode))
	}
	if c.IsWeb() {
		if err := validateOrigin(c.Deployment.Origin); err != nil {
			errz = append(errz, err)
		}
	}

	if c.Poller.Interval <= 0 {
		errz = append(errz, fmt.Errorf("%w: %s", ErrInvalidInterval, c.Poller.Interval))
	}

	if c.Mailbox.Listen == "" {
		errz = append(errz, ErrMissingListen)
	}
	if c.Mailbox.Capacity <= 0 {
		errz = append(errz, fmt.Errorf("%w: %d", ErrInvalidCapacity, c.Mailbox.Capacity))
	}
	if c.Mailbox.TTL <= 0 {
		errz = append(errz, fmt.Errorf("%w: %s", ErrInvalidTTL, c.Mailbox.TTL))
	}

	if c.Bridge.Enabled() && c.Bridge.ExtHost == "" {
		errz = append(errz, ErrMissingExtHost)
	}

	if err := c.Logging.Validate(); err != nil {
		errz = append(errz, err)
	}

	return errors.Join(errz...)
}

func validateOrigin(origin string) error {
	if origin == "" {
		return ErrMissingOrigin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q needs an http or https scheme", ErrInvalidOrigin, origin)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q has no host", ErrInvalidOrigin, origin)
	}
	return nil
}

// isValidScheme follows RFC 3986: a letter followed by letters, digits, '+',
// '-' or '.'.
func isValidScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
