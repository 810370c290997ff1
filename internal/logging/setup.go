// Package logging builds the slog handlers used by the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/atlanticdynamic/urlrelay/internal/config/logs"
	"github.com/charmbracelet/log"
)

// SetupHandler returns a handler for cfg writing to w.
func SetupHandler(cfg logs.Config, w io.Writer) slog.Handler {
	if cfg.Format == logs.FormatJSON {
		return SetupHandlerJSON(cfg.Level.String(), w)
	}
	return SetupHandlerText(cfg.Level.String(), w)
}

// SetupHandlerText configures a charmbracelet text handler. "trace" is debug
// with caller information.
func SetupHandlerText(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stderr
	}

	opts := log.Options{Level: log.InfoLevel}
	switch strings.ToLower(logLevel) {
	case "trace":
		opts.ReportCaller = true
		opts.ReportTimestamp = true
		opts.Level = log.DebugLevel
	case "debug":
		opts.ReportTimestamp = true
		opts.Level = log.DebugLevel
	case "warn", "warning":
		opts.Level = log.WarnLevel
	case "error":
		opts.Level = log.ErrorLevel
	}

	return log.NewWithOptions(writer, opts)
}

// SetupHandlerJSON configures a JSON slog handler with the provided writer and log level
func SetupHandlerJSON(logLevel string, writer io.Writer) slog.Handler {
	if writer == nil {
		writer = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	switch strings.ToLower(logLevel) {
	case "trace":
		opts.AddSource = true
		opts.Level = slog.LevelDebug
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn", "warning":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	return slog.NewJSONHandler(writer, opts)
}

// SetupLogger opens cfg.Output, installs the resulting handler as the slog
// default and returns it. The returned closer releases a log file, if any.
func SetupLogger(cfg logs.Config) (slog.Handler, io.Closer, error) {
	w, closer, err := OpenOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	handler := SetupHandler(cfg, w)
	slog.SetDefault(slog.New(handler))
	return handler, closer, nil
}
