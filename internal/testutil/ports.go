package testutil

import (
	"net"
	"sync"
	"testing"
)

var (
	portMutex sync.Mutex
	usedPorts = make(map[string]struct{})
)

// GetRandomListeningAddr returns a free localhost address that no other test in
// this process has been handed.
func GetRandomListeningAddr(t *testing.T) string {
	t.Helper()

	for {
		listener, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			t.Fatalf("Failed to get random port: %v", err)
		}
		addr := listener.Addr().String()
		if err := listener.Close(); err != nil {
			t.Fatalf("Failed to close listener: %v", err)
		}

		portMutex.Lock()
		_, taken := usedPorts[addr]
		if !taken {
			usedPorts[addr] = struct{}{}
		}
		portMutex.Unlock()

		if !taken {
			return addr
		}
	}
}
