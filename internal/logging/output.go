package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenOutput resolves a log destination:
//   - "" or "stderr" writes to os.Stderr
//   - "stdout" writes to os.Stdout
//   - "file:///path" or any path containing a separator appends to that file
func OpenOutput(output string) (io.Writer, io.Closer, error) {
	switch {
	case output == "" || output == "stderr":
		return os.Stderr, nopCloser{}, nil
	case output == "stdout":
		return os.Stdout, nopCloser{}, nil
	case strings.HasPrefix(output, "file://"):
		return openFile(strings.TrimPrefix(output, "file://"))
	case strings.Contains(output, "://"):
		return nil, nil, fmt.Errorf("unsupported log output: %s", output)
	case strings.ContainsAny(output, `/\`):
		return openFile(output)
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", output)
	}
}

func openFile(path string) (io.Writer, io.Closer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, f, nil
}
