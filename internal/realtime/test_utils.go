package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/janmaslov/wishlist/internal/models"

	"github.com/gorilla/websocket"
)

var errConnClosed = errors.New("connection closed")

// mockConn implements the wsConn interface for testing
type mockConn struct {
	mu        sync.Mutex
	writes    [][]byte
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 8),
		closed:  make(chan struct{}),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-m.inbound:
		return websocket.TextMessage, frame, nil
	case <-m.closed:
		return 0, nil, errConnClosed
	}
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-m.closed:
		return errConnClosed
	default:
	}

	if messageType == websocket.TextMessage {
		m.mu.Lock()
		m.writes = append(m.writes, data)
		m.mu.Unlock()
	}
	return nil
}

func (m *mockConn) SetReadLimit(limit int64)            {}
func (m *mockConn) SetReadDeadline(t time.Time) error   { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetPongHandler(h func(string) error) {}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

// push feeds a client-to-server frame into the connection.
func (m *mockConn) push(frame string) {
	m.inbound <- []byte(frame)
}

func (m *mockConn) sentMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	copy(out, m.writes)
	return out
}

func testIdentity(name string, admin bool) models.Identity {
	return models.Identity{
		UserID:     1,
		JellyfinID: "jf-" + name,
		Name:       name,
		Admin:      admin,
	}
}

func newTestClient(r *Registry, name string, ch Channel) *Client {
	return newClient(r, newMockConn(), testIdentity(name, false), ch)
}

// drainPayloads empties the client's send queue.
func drainPayloads(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case p := <-c.send:
			out = append(out, p)
		default:
			return out
		}
	}
}

// waitFor polls until the condition holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
