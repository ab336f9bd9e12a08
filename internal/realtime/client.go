package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/janmaslov/wishlist/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; clients only send action frames
	maxMessageSize = 256
)

var (
	ErrClientClosed   = errors.New("client closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// wsConn is the slice of *websocket.Conn the client pumps depend on, so tests
// can substitute an in-memory connection.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// actionFrame is the only client-to-server message. The channel is implicit:
// one channel per endpoint.
type actionFrame struct {
	Action string `json:"action"`
}

// Client is one live connection: a fresh opaque id, the identity bound at
// open time (immutable from then on) and the transport handle used to push
// snapshots. A closed client's id is never reused; reconnecting yields a new
// client.
type Client struct {
	id       string
	identity models.Identity
	channel  Channel
	conn     wsConn
	registry *Registry
	send     chan []byte
	done     chan struct{} // closed exactly once on removal

	closed int32 // atomic flag guarding close(done)
}

func newClient(registry *Registry, conn wsConn, identity models.Identity, channel Channel) *Client {
	return &Client{
		id:       uuid.New().String(),
		identity: identity,
		channel:  channel,
		conn:     conn,
		registry: registry,
		send:     make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Identity() models.Identity {
	return c.identity
}

// Deliver queues a payload for the peer without blocking the caller. A full
// buffer or a closed client yields an error; the caller logs it and moves on,
// the connection stays registered until its own close signal fires. The send
// channel itself is never closed, so a delivery racing a concurrent close
// simply lands on a connection about to be torn down.
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSendBufferFull
	}
}

// closeSend terminates the write pump. Safe under concurrent close signals;
// only the first caller closes the done channel.
func (c *Client) closeSend() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		close(c.done)
	}
}

// readPump consumes subscribe/unsubscribe action frames until the transport
// dies, then removes the client from the registry. Removal is idempotent, so
// racing close signals are harmless.
func (c *Client) readPump() {
	defer func() {
		c.registry.Remove(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("WebSocket read failed", "clientID", c.id, "error", err)
			}
			return
		}

		var frame actionFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			slog.Debug("Ignoring malformed frame", "clientID", c.id, "error", err)
			continue
		}

		switch frame.Action {
		case actionSubscribe:
			c.registry.Subscribe(c.id, c.channel)
		case actionUnsubscribe:
			c.registry.Unsubscribe(c.id, c.channel)
		default:
			slog.Debug("Ignoring unknown action", "clientID", c.id, "action", frame.Action)
		}
	}
}

// writePump drains the send queue to the peer and keeps the connection alive
// with pings. It exits on registry removal (done closed) or a failed write.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("WebSocket write failed", "clientID", c.id, "error", err)
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
