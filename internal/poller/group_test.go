package poller

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atlanticdynamic/urlrelay/internal/finitestate"
	"github.com/atlanticdynamic/urlrelay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGroup(t *testing.T, origin string, d Dispatcher) *Group {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&testutil.ThreadSafeBuffer{}, nil))
	g, err := NewGroup(origin, d,
		WithGroupLogger(logger),
		WithPollerOptions(WithInterval(testInterval)),
	)
	require.NoError(t, err)
	return g
}

func TestNewGroup_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewGroup("", &testutil.RecordingDispatcher{})
	require.ErrorIs(t, err, ErrMissingOrigin)

	_, err = NewGroup("https://example.com", nil)
	require.ErrorIs(t, err, ErrMissingDispatcher)
}

func TestGroup_LaunchDelivers(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(&scriptedMailbox{bodies: []string{"", `[{"scheme":"myapp","authority":"ext1"}]`}})
	t.Cleanup(server.Close)

	dispatcher := &testutil.RecordingDispatcher{}
	g := newTestGroup(t, server.URL, dispatcher)

	g.Launch("ext1")
	g.Wait()

	require.Len(t, dispatcher.Opened(), 1)
	assert.Equal(t, 0, g.Active())
}

func TestGroup_EachLaunchIsIndependent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(&scriptedMailbox{bodies: []string{`[{"scheme":"myapp","authority":"ext1"}]`}})
	t.Cleanup(server.Close)

	dispatcher := &testutil.RecordingDispatcher{}
	g := newTestGroup(t, server.URL, dispatcher)

	g.Launch("ext1")
	g.Launch("ext1")
	g.Wait()

	assert.Len(t, dispatcher.Opened(), 2)
}

func TestGroup_RunAndStopCancelsPollers(t *testing.T) {
	t.Parallel()

	mailbox := &scriptedMailbox{bodies: []string{""}}
	server := httptest.NewServer(mailbox)
	t.Cleanup(server.Close)

	g := newTestGroup(t, server.URL, &testutil.RecordingDispatcher{})
	assert.Equal(t, finitestate.StatusNew, g.GetState())

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()
	assert.Eventually(t, g.IsReady, time.Second, time.Millisecond)

	g.Launch("ext1")
	g.Launch("ext2")
	assert.Eventually(t, func() bool { return mailbox.count() >= 4 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, g.Active())

	g.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("group did not stop")
	}

	assert.Equal(t, 0, g.Active())
	assert.Equal(t, finitestate.StatusStopped, g.GetState())

	// stopped groups ignore new work
	before := mailbox.count()
	g.Launch("ext3")
	time.Sleep(3 * testInterval)
	assert.Equal(t, before, mailbox.count())
	assert.Equal(t, 0, g.Active())
}

func TestGroup_ParentContextCancel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(&scriptedMailbox{bodies: []string{""}})
	t.Cleanup(server.Close)

	g := newTestGroup(t, server.URL, &testutil.RecordingDispatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	assert.Eventually(t, g.IsReady, time.Second, time.Millisecond)

	g.Launch("ext1")
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("group did not stop")
	}
	assert.Equal(t, 0, g.Active())
}

func TestGroup_ReplaysFailedPollerHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bodies     []string
		wantReplay bool
	}{
		{name: "malformed payload", bodies: []string{"", "not json"}, wantReplay: true},
		{name: "delivered", bodies: []string{"", `[{"scheme":"myapp","authority":"ext1"}]`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(&scriptedMailbox{bodies: tt.bodies})
			t.Cleanup(server.Close)

			out := &testutil.ThreadSafeBuffer{}
			g, err := NewGroup(server.URL, &testutil.RecordingDispatcher{},
				WithGroupLogger(slog.New(slog.NewTextHandler(out, nil))),
				WithPollerOptions(WithInterval(testInterval)),
			)
			require.NoError(t, err)

			g.Launch("ext1")
			g.Wait()

			assert.Equal(t, tt.wantReplay, out.Contains("Poller ended with error"))
			assert.Equal(t, tt.wantReplay, out.Contains("replay=true"))
			// the debug trail only reaches an info-level log through the replay
			assert.Equal(t, tt.wantReplay, out.Contains(`level=WARN msg="Polling for callback"`))
		})
	}
}

func TestGroup_String(t *testing.T) {
	t.Parallel()
	g := newTestGroup(t, "https://example.com", &testutil.RecordingDispatcher{})
	assert.Equal(t, "poller.Group", g.String())
}
