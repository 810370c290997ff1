// Package logs holds the logging section of the configuration.
package logs

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config is the [logging] table.
type Config struct {
	Format Format `toml:"format"`
	Level  Level  `toml:"level"`

	// Output is "stdout", "stderr" or a file path.
	Output string `toml:"output" interpolate:"env"`
}

// Default returns text output at info level on stderr.
func Default() Config {
	return Config{Format: FormatText, Level: LevelInfo, Output: "stderr"}
}

// Format selects the log output encoding.
type Format string

// Level is the minimum level that is emitted.
type Level string

func (f Format) String() string { return string(f) }

func (l Level) String() string { return string(l) }

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f == FormatText || f == FormatJSON
}

// IsValid reports whether l is a known level.
func (l Level) IsValid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	default:
		return false
	}
}

// UnmarshalText accepts the same aliases as FormatFromString.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := FormatFromString(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// UnmarshalText accepts the same aliases as LevelFromString.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := LevelFromString(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// FormatFromString converts a string to a Format
func FormatFromString(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON, nil
	case "text", "txt", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLogFormat, format)
	}
}

// LevelFromString converts a string to a Level
func LevelFromString(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
	}
}

// SlogLevel converts l to a slog.Level, defaulting to info.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks both fields and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	if !c.Format.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Format))
	}
	if !c.Level.IsValid() {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level))
	}
	return errors.Join(errs...)
}

func (c *Config) String() string {
	return fmt.Sprintf("format=%s, level=%s, output=%s", c.Format, c.Level, c.Output)
}
