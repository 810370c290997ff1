package mailbox

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/finitestate"
	"github.com/atlanticdynamic/urlrelay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewServer("", newTestHandlers())
	require.ErrorIs(t, err, ErrMissingAddress)

	_, err = NewServer("localhost:0", nil)
	require.ErrorIs(t, err, ErrMissingHandlers)
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	s, err := NewServer("localhost:0", newTestHandlers())
	require.NoError(t, err)

	routes, err := s.Routes()
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, CallbackPath, routes[0].Path)
	assert.Equal(t, FetchCallbackPath, routes[1].Path)
	assert.Equal(t, "mailbox.Server[localhost:0]", s.String())
}

func TestServer_RunServesMailbox(t *testing.T) {
	t.Parallel()

	addr := testutil.GetRandomListeningAddr(t)
	logs := &testutil.ThreadSafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := NewServer(addr, newTestHandlers(), WithLogger(logger), WithDrainTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, s.IsReady, 5*time.Second, 10*time.Millisecond)

	get := func(path string) (*http.Response, string) {
		resp, err := http.Get("http://" + addr + path)
		require.NoError(t, err)
		defer func() { assert.NoError(t, resp.Body.Close()) }()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, _ := get("/callback?vscode-id=ext1&vscode-path=%2Fa")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, body := get("/fetch-callback?vscode-id=ext1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"scheme":"myapp","authority":"ext1","path":"/a"}]`, body)

	resp, _ = get("/fetch-callback")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Eventually(t, func() bool { return logs.Contains("HTTP request") }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, finitestate.StatusStopped, s.GetState())
}
