package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atlanticdynamic/urlrelay/internal/interpolation"
	"github.com/pelletier/go-toml/v2"
)

// NewConfig loads configuration from a TOML file
func NewConfig(filePath string) (*Config, error) {
	if ext := filepath.Ext(filePath); ext != ".toml" {
		return nil, fmt.Errorf(
			"%w: unsupported config format: %s, only .toml is supported",
			ErrFailedToLoadConfig,
			ext,
		)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	return NewConfigFromBytes(data)
}

// NewConfigFromReader loads configuration from an io.Reader providing TOML data
func NewConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config data from reader: %w", ErrFailedToLoadConfig, err)
	}
	return NewConfigFromBytes(data)
}

// NewConfigFromBytes loads configuration from TOML bytes. Unknown keys are
// rejected so typos do not silently fall back to defaults.
func NewConfigFromBytes(data []byte) (*Config, error) {
	cfg := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s", ErrFailedToLoadConfig, strict.String())
		}
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := interpolation.New(nil).Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return cfg, nil
}
