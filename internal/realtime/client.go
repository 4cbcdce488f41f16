// Package realtime is the client side of the push-notification channel.
//
// A Client holds one WebSocket, registers a client identity on it and turns
// inbound events into model.Notification values. Connectivity changes are
// reported on a separate state stream. After an unrequested drop the client
// reconnects with bounded exponential backoff.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/nhle/cloudconsole/internal/model"
)

const (
	// writeWait bounds every outbound frame.
	writeWait = 10 * time.Second

	handshakeTimeout = 10 * time.Second

	notificationBuffer = 64
	stateBuffer        = 16
)

// Options configures a Client.
type Options struct {
	// URL is the channel endpoint, e.g. ws://localhost:3000/ws.
	URL string

	// MaxReconnectAttempts bounds reconnection after a drop. Zero disables
	// reconnection.
	MaxReconnectAttempts int
	InitialBackoff       time.Duration
	MaxBackoff           time.Duration

	// Dialer overrides the WebSocket dialer. Optional.
	Dialer *websocket.Dialer

	// Now stamps received notifications. Defaults to time.Now.
	Now func() time.Time
}

// Client is a notification channel connection. It is safe for concurrent
// use.
type Client struct {
	opts   Options
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	clientID string
	// gen is bumped whenever the current connection is abandoned so a
	// reader still running on it knows to exit quietly.
	gen    uint64
	cancel context.CancelFunc

	notifications chan model.Notification
	states        chan State
}

// New creates a disconnected client.
func New(opts Options) *Client {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = opts.InitialBackoff
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}

	return &Client{
		opts:          opts,
		dialer:        dialer,
		notifications: make(chan model.Notification, notificationBuffer),
		states:        make(chan State, stateBuffer),
	}
}

// Notifications streams translated inbound events in arrival order.
func (c *Client) Notifications() <-chan model.Notification {
	return c.notifications
}

// States streams connectivity changes. Changes are dropped if nobody is
// reading; State always has the current value.
func (c *Client) States() <-chan State {
	return c.states
}

// State returns the current connectivity.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ClientID returns the identity of the last Connect call.
func (c *Client) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

// Connect dials the channel and registers clientID. It does nothing while
// a connection is open or being established. A failed initial dial is
// returned and does not trigger reconnection.
func (c *Client) Connect(ctx context.Context, clientID string) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	c.clientID = clientID
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.setStateLocked(Connecting)
	c.mu.Unlock()

	conn, err := c.dial(ctx, clientID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if runCtx.Err() != nil {
		// Disconnect ran while dialing.
		if conn != nil {
			_ = conn.Close()
		}
		return nil
	}
	if err != nil {
		cancel()
		c.cancel = nil
		c.setStateLocked(Disconnected)
		return err
	}

	c.attachLocked(runCtx, conn)
	return nil
}

// Disconnect closes the connection and stops any pending reconnect. It is
// safe to call when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++

	if c.conn != nil {
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = c.conn.Close()
		c.conn = nil
	}

	if c.state != Disconnected {
		c.setStateLocked(Disconnected)
	}
}

// JoinRoom subscribes to room. No-op while disconnected.
func (c *Client) JoinRoom(room string) {
	c.send(eventJoinRoom, map[string]string{"room": room})
}

// LeaveRoom unsubscribes from room. No-op while disconnected.
func (c *Client) LeaveRoom(room string) {
	c.send(eventLeaveRoom, map[string]string{"room": room})
}

// SendDirectMessage sends message to the client registered as to. No-op
// while disconnected.
func (c *Client) SendDirectMessage(to, message string) {
	c.send(eventSendMessage, map[string]string{"to": to, "message": message})
}

// SendRoomMessage sends message to everyone in room. No-op while
// disconnected.
func (c *Client) SendRoomMessage(room, message string) {
	c.send(eventRoomMessage, map[string]string{"room": room, "message": message})
}

// send writes a fire-and-forget event on the open transport. Nothing is
// queued when there is none.
func (c *Client) send(name string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		log.Debug("channel closed, dropping outbound event", "event", name)
		return
	}

	ev, err := newEvent(name, payload)
	if err != nil {
		log.Warn("encoding outbound event", "event", name, "err", err)
		return
	}
	if err := writeEvent(c.conn, ev); err != nil {
		log.Warn("writing outbound event", "event", name, "err", err)
	}
}

// dial opens a transport and sends the register event on it.
func (c *Client) dial(ctx context.Context, clientID string) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.opts.URL, err)
	}

	ev, err := newEvent(eventRegister, map[string]string{"userId": clientID})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := writeEvent(conn, ev); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("registering %s: %w", clientID, err)
	}

	log.Info("channel transport open", "url", c.opts.URL, "client_id", clientID)
	return conn, nil
}

// attachLocked makes conn current and starts its reader. c.mu must be held.
func (c *Client) attachLocked(ctx context.Context, conn *websocket.Conn) {
	c.gen++
	c.conn = conn
	go c.readLoop(ctx, conn, c.gen)
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(ctx, conn, gen, err)
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Warn("invalid channel frame", "err", err)
			continue
		}
		c.dispatch(ctx, gen, ev)
	}
}

func (c *Client) dispatch(ctx context.Context, gen uint64, ev Event) {
	switch ev.Name {
	case eventRegistered:
		c.mu.Lock()
		if gen == c.gen && c.conn != nil {
			c.setStateLocked(Connected)
		}
		c.mu.Unlock()
		return
	case eventWelcome:
		log.Debug("channel welcome", "data", string(ev.Data))
		return
	}

	translate, ok := inbound[ev.Name]
	if !ok {
		log.Debug("dropping unknown channel event", "event", ev.Name)
		return
	}

	n, err := translate(ev.Data, c.opts.Now())
	if err != nil {
		log.Warn("translating channel event", "event", ev.Name, "err", err)
		return
	}

	select {
	case c.notifications <- n:
	case <-ctx.Done():
	}
}

// handleDrop runs when the reader of generation gen fails. Drops caused by
// Disconnect are ignored.
func (c *Client) handleDrop(ctx context.Context, conn *websocket.Conn, gen uint64, cause error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}

	_ = conn.Close()
	c.conn = nil
	log.Warn("channel transport dropped", "err", cause)

	if ctx.Err() != nil || c.opts.MaxReconnectAttempts <= 0 {
		c.stopLocked()
		c.mu.Unlock()
		return
	}

	c.setStateLocked(Connecting)
	clientID := c.clientID
	c.mu.Unlock()

	c.reconnect(ctx, clientID)
}

func (c *Client) reconnect(ctx context.Context, clientID string) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	b.MaxInterval = c.opts.MaxBackoff

	conn, err := backoff.Retry(ctx,
		func() (*websocket.Conn, error) {
			return c.dial(ctx, clientID)
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.opts.MaxReconnectAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("channel reconnect failed", "err", err, "retry_in", next)
		}),
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	if err != nil {
		log.Error("channel reconnect gave up",
			"attempts", c.opts.MaxReconnectAttempts,
			"err", err,
		)
		c.stopLocked()
		return
	}

	c.attachLocked(ctx, conn)
}

// stopLocked releases the run context and reports disconnected.
func (c *Client) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.setStateLocked(Disconnected)
}

func (c *Client) setStateLocked(s State) {
	c.state = s
	log.Info("channel state", "state", s)

	select {
	case c.states <- s:
	default:
	}
}

func writeEvent(conn *websocket.Conn, ev Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}
