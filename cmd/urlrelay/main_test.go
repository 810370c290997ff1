package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/mailbox"
	"github.com/atlanticdynamic/urlrelay/internal/testutil"
	"github.com/atlanticdynamic/urlrelay/internal/uri"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp runs the CLI with args and returns what it printed.
func runApp(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	out := &testutil.ThreadSafeBuffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = &testutil.ThreadSafeBuffer{}

	err := app.Run(ctx, append([]string{"urlrelay"}, args...))
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urlrelay.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const nativeConfig = `
[product]
url_protocol = "myapp"

[logging]
level = "error"
`

func webConfig(origin string) string {
	return fmt.Sprintf(`
[product]
url_protocol = "myapp"

[deployment]
mode = "web"
origin = %q

[poller]
interval = "20ms"

[logging]
level = "error"
`, origin)
}

// mailboxServer serves the mailbox endpoints over httptest.
func mailboxServer(t *testing.T) (*httptest.Server, *mailbox.Store) {
	t.Helper()

	store := mailbox.NewStore(4, time.Minute)
	handlers := mailbox.NewHandlers(store, "myapp", slog.New(slog.NewTextHandler(&testutil.ThreadSafeBuffer{}, nil)))

	mux := http.NewServeMux()
	mux.HandleFunc(mailbox.CallbackPath, handlers.Callback)
	mux.HandleFunc(mailbox.FetchCallbackPath, handlers.FetchCallback)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func TestVersionCmd(t *testing.T) {
	out, err := runApp(t, context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, "urlrelay version dev\n", out)
}

func TestValidateCmd(t *testing.T) {
	path := writeConfig(t, nativeConfig)

	t.Run("summary", func(t *testing.T) {
		out, err := runApp(t, context.Background(), "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration file "+path+" is valid")
		assert.Contains(t, out, "- Mode: native")
		assert.Contains(t, out, "- URL protocol: myapp")
		assert.Contains(t, out, "Use --tree")
	})

	t.Run("tree", func(t *testing.T) {
		out, err := runApp(t, context.Background(), "validate", "--tree", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, "urlrelay config")
		assert.NotContains(t, out, "Use --tree")
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := runApp(t, context.Background(), "validate")
		require.ErrorIs(t, err, errConfigRequired)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := writeConfig(t, "[deployment]\nmode = \"web\"\n")
		_, err := runApp(t, context.Background(), "validate", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}

func TestCreateCmd_Native(t *testing.T) {
	path := writeConfig(t, nativeConfig)

	out, err := runApp(t, context.Background(),
		"create", "--config", path, "--id", "pub.ext", "--path", "/done", "--query", "code=1", "--fragment", "top")
	require.NoError(t, err)
	assert.Equal(t, "myapp://pub.ext/done?code=1#top\n", out)
}

func TestCreateCmd_RequiresID(t *testing.T) {
	path := writeConfig(t, nativeConfig)
	_, err := runApp(t, context.Background(), "create", "--config", path)
	require.Error(t, err)
}

func TestCreateCmd_WebWait(t *testing.T) {
	server, store := mailboxServer(t)
	store.Put("pub.ext", uri.Components{Scheme: "myapp", Authority: "pub.ext", Path: "/done"})
	path := writeConfig(t, webConfig(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := runApp(t, ctx, "create", "--config", path, "--id", "pub.ext", "--path", "/done", "--wait")
	require.NoError(t, err)
	assert.Contains(t, out, server.URL+"/callback?vscode-id=pub.ext")
	assert.Contains(t, out, "myapp://pub.ext/done\n")
}

func TestPollCmd(t *testing.T) {
	t.Run("native mode is rejected", func(t *testing.T) {
		path := writeConfig(t, nativeConfig)
		_, err := runApp(t, context.Background(), "poll", "--config", path, "--id", "pub.ext")
		require.ErrorIs(t, err, errNotWebMode)
	})

	t.Run("prints delivered callbacks", func(t *testing.T) {
		server, store := mailboxServer(t)
		store.Put("pub.ext", uri.Components{Scheme: "myapp", Authority: "pub.ext", Path: "/one"})
		store.Put("pub.ext", uri.Components{Scheme: "myapp", Authority: "pub.ext", Query: "two=2"})
		path := writeConfig(t, webConfig(server.URL))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		out, err := runApp(t, ctx, "poll", "--config", path, "--id", "pub.ext")
		require.NoError(t, err)
		assert.Equal(t, "myapp://pub.ext/one\nmyapp://pub.ext?two=2\n", out)
	})

	t.Run("interrupt before delivery", func(t *testing.T) {
		server, _ := mailboxServer(t)
		path := writeConfig(t, webConfig(server.URL))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		out, err := runApp(t, ctx, "poll", "--config", path, "--id", "pub.ext")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestServeCmd(t *testing.T) {
	addr := testutil.GetRandomListeningAddr(t)
	path := writeConfig(t, fmt.Sprintf(`
[product]
url_protocol = "myapp"

[mailbox]
listen = %q

[logging]
level = "error"
`, addr))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := runApp(t, ctx, "serve", "--config", path)
		done <- err
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + mailbox.CallbackPath + "?vscode-id=pub.ext")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get("http://" + addr + mailbox.FetchCallbackPath + "?vscode-id=pub.ext")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	_, err := runApp(t, context.Background(), "serve")
	require.ErrorIs(t, err, errConfigRequired)
}

func TestSetupLogger_Override(t *testing.T) {
	path := writeConfig(t, nativeConfig)
	_, err := runApp(t, context.Background(), "--log-level", "verbose", "create", "--config", path, "--id", "x")
	require.Error(t, err)
}
