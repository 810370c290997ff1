package testutil

import (
	"bytes"
	"strings"
	"sync"
)

// ThreadSafeBuffer is an io.Writer that can be read while log handlers in other
// goroutines are still writing to it.
type ThreadSafeBuffer struct {
	buffer bytes.Buffer
	mutex  sync.Mutex
}

// Write implements io.Writer
func (b *ThreadSafeBuffer) Write(p []byte) (n int, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.Write(p)
}

// String returns the accumulated output
func (b *ThreadSafeBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.String()
}

// Contains reports whether the accumulated output contains s
func (b *ThreadSafeBuffer) Contains(s string) bool {
	return strings.Contains(b.String(), s)
}
