package realtime_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cloudconsole/internal/model"
	"github.com/nhle/cloudconsole/internal/realtime"
)

const waitFor = 3 * time.Second

// fakeChannel is a WebSocket server that answers register with registered
// and records every frame it receives.
type fakeChannel struct {
	srv      *httptest.Server
	received chan realtime.Event
	// reject makes the server refuse new upgrades with 503.
	reject atomic.Bool

	mu    sync.Mutex
	conns []*websocket.Conn
}

func newFakeChannel(t *testing.T) *fakeChannel {
	t.Helper()

	f := &fakeChannel{received: make(chan realtime.Event, 64)}
	upgrader := websocket.Upgrader{}

	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.reject.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.mu.Lock()
		f.conns = append(f.conns, conn)
		f.mu.Unlock()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ev realtime.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				continue
			}
			f.received <- ev
			if ev.Name == "register" {
				f.write(conn, "registered", json.RawMessage(ev.Data))
			}
		}
	}))
	t.Cleanup(func() {
		f.dropAll()
		f.srv.Close()
	})
	return f
}

func (f *fakeChannel) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeChannel) write(conn *websocket.Conn, name string, data any) {
	raw, _ := json.Marshal(data)
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = conn.WriteJSON(realtime.Event{Name: name, Data: raw})
}

// push sends an event on the most recent connection.
func (f *fakeChannel) push(t *testing.T, name string, data any) {
	t.Helper()
	f.mu.Lock()
	require.NotEmpty(t, f.conns)
	conn := f.conns[len(f.conns)-1]
	f.mu.Unlock()
	f.write(conn, name, data)
}

func (f *fakeChannel) connCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func (f *fakeChannel) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		_ = c.Close()
	}
}

func (f *fakeChannel) next(t *testing.T) realtime.Event {
	t.Helper()
	select {
	case ev := <-f.received:
		return ev
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a frame")
		return realtime.Event{}
	}
}

func newClient(t *testing.T, f *fakeChannel, attempts int) *realtime.Client {
	t.Helper()
	c := realtime.New(realtime.Options{
		URL:                  f.url(),
		MaxReconnectAttempts: attempts,
		InitialBackoff:       10 * time.Millisecond,
		MaxBackoff:           50 * time.Millisecond,
	})
	t.Cleanup(c.Disconnect)
	return c
}

func waitState(t *testing.T, c *realtime.Client, want realtime.State) {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case s := <-c.States():
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s, current %s", want, c.State())
		}
	}
}

func nextNotification(t *testing.T, c *realtime.Client) model.Notification {
	t.Helper()
	select {
	case n := <-c.Notifications():
		return n
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a notification")
		return model.Notification{}
	}
}

func TestConnectRegistersClient(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)

	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connecting)
	waitState(t, c, realtime.Connected)

	ev := f.next(t)
	assert.Equal(t, "register", ev.Name)
	assert.JSONEq(t, `{"userId":"user-1"}`, string(ev.Data))
	assert.Equal(t, "user-1", c.ClientID())
}

func TestConnectTwiceOpensOneSocket(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)

	require.NoError(t, c.Connect(context.Background(), "user-1"))
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)
	require.NoError(t, c.Connect(context.Background(), "user-1"))

	assert.Equal(t, 1, f.connCount())
}

func TestConnectFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	c := realtime.New(realtime.Options{URL: url, MaxReconnectAttempts: 3})
	err := c.Connect(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, realtime.Disconnected, c.State())
}

func TestInboundEventsBecomeNotifications(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)

	f.push(t, "welcome", map[string]any{"message": "hi"})
	f.push(t, "typing", map[string]any{"from": "bob"})
	f.push(t, "notification", map[string]any{
		"type":    "file_uploaded",
		"title":   "Upload",
		"message": "report.pdf stored",
		"data":    map[string]any{"key": "uploads/report.pdf"},
	})
	f.push(t, "newMessage", map[string]any{
		"from":      "alice",
		"message":   "ping",
		"timestamp": "2026-05-01T10:00:00Z",
	})
	f.push(t, "broadcastMessage", map[string]any{
		"message":   "maintenance at noon",
		"timestamp": 1767225600000,
	})
	f.push(t, "roomMessage", map[string]any{"room": "ops", "message": "deploying"})

	n := nextNotification(t, c)
	assert.Equal(t, model.NotificationFileUploaded, n.Type)
	assert.Equal(t, "Upload", n.Title)
	assert.JSONEq(t, `{"key":"uploads/report.pdf"}`, string(n.Data))
	assert.False(t, n.Timestamp.IsZero())

	n = nextNotification(t, c)
	assert.Equal(t, model.NotificationMessageReceived, n.Type)
	assert.Equal(t, "New Message", n.Title)
	assert.Equal(t, "Message from alice", n.Message)
	assert.True(t, n.Timestamp.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Contains(t, string(n.Data), `"from":"alice"`)

	n = nextNotification(t, c)
	assert.Equal(t, model.NotificationInfo, n.Type)
	assert.Equal(t, "Broadcast Message", n.Title)
	assert.Equal(t, "maintenance at noon", n.Message)
	assert.Equal(t, int64(1767225600000), n.Timestamp.UnixMilli())

	n = nextNotification(t, c)
	assert.Equal(t, "Message in ops", n.Title)
	assert.Equal(t, "deploying", n.Message)
}

func TestOutboundActionsWhileDisconnectedAreNoops(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)

	c.JoinRoom("ops")
	c.LeaveRoom("ops")
	c.SendDirectMessage("user-2", "hi")
	c.SendRoomMessage("ops", "hi")

	assert.Equal(t, realtime.Disconnected, c.State())
	assert.Equal(t, 0, f.connCount())
}

func TestOutboundActionsWhileConnected(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)
	require.Equal(t, "register", f.next(t).Name)

	c.JoinRoom("ops")
	c.SendDirectMessage("user-2", "hello")
	c.SendRoomMessage("ops", "deploying")
	c.LeaveRoom("ops")

	ev := f.next(t)
	assert.Equal(t, "joinRoom", ev.Name)
	assert.JSONEq(t, `{"room":"ops"}`, string(ev.Data))

	ev = f.next(t)
	assert.Equal(t, "sendMessage", ev.Name)
	assert.JSONEq(t, `{"to":"user-2","message":"hello"}`, string(ev.Data))

	ev = f.next(t)
	assert.Equal(t, "roomMessage", ev.Name)
	assert.JSONEq(t, `{"room":"ops","message":"deploying"}`, string(ev.Data))

	assert.Equal(t, "leaveRoom", f.next(t).Name)
}

func TestDisconnectStopsOutboundAndIsRepeatable(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 3)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)
	require.Equal(t, "register", f.next(t).Name)

	c.Disconnect()
	c.Disconnect()
	assert.Equal(t, realtime.Disconnected, c.State())

	c.JoinRoom("ops")
	assert.Never(t, func() bool { return len(f.received) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, 1, f.connCount())
}

func TestReconnectAfterDrop(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 3)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)

	f.dropAll()

	waitState(t, c, realtime.Connecting)
	waitState(t, c, realtime.Connected)
	assert.Equal(t, 2, f.connCount())
}

func TestDisconnectCancelsPendingReconnect(t *testing.T) {
	f := newFakeChannel(t)
	c := realtime.New(realtime.Options{
		URL:                  f.url(),
		MaxReconnectAttempts: 5,
		InitialBackoff:       5 * time.Second,
		MaxBackoff:           5 * time.Second,
	})
	t.Cleanup(c.Disconnect)

	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)
	require.Equal(t, "register", f.next(t).Name)

	f.reject.Store(true)
	f.dropAll()
	waitState(t, c, realtime.Connecting)

	c.Disconnect()
	assert.Equal(t, realtime.Disconnected, c.State())
	assert.Never(t, func() bool {
		return c.State() != realtime.Disconnected || f.connCount() != 1
	}, 300*time.Millisecond, 10*time.Millisecond)

	f.reject.Store(false)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)
	assert.Equal(t, "register", f.next(t).Name)
	assert.Equal(t, 2, f.connCount())
}

func TestNoReconnectWhenDisabled(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)

	f.dropAll()

	waitState(t, c, realtime.Disconnected)
	assert.Never(t, func() bool { return f.connCount() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestReconnectGivesUp(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 2)
	require.NoError(t, c.Connect(context.Background(), "user-1"))
	waitState(t, c, realtime.Connected)

	f.srv.Close()
	f.dropAll()

	waitState(t, c, realtime.Disconnected)
	assert.Equal(t, realtime.Disconnected, c.State())
}

func TestWaitForEventDeliversState(t *testing.T) {
	f := newFakeChannel(t)
	c := newClient(t, f, 0)
	require.NoError(t, c.Connect(context.Background(), "user-1"))

	msg := c.WaitForEvent()()
	state, ok := msg.(realtime.StateMsg)
	require.True(t, ok)
	assert.Equal(t, realtime.Connecting, state.State)
}
