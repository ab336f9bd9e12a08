package realtime

import (
	"testing"
	"time"

	"github.com/janmaslov/wishlist/internal/models"
)

// startClient runs both pumps like the upgrade handler does.
func startClient(r *Registry, conn *mockConn, name string, ch Channel) *Client {
	c := newClient(r, conn, testIdentity(name, false), ch)
	r.Admit(c)
	go c.writePump()
	go c.readPump()
	return c
}

func TestSubscribeActionFrameJoinsEndpointChannel(t *testing.T) {
	r := NewRegistry()
	conn := newMockConn()
	startClient(r, conn, "alice", ChannelActive)
	defer conn.Close()

	conn.push(`{"action":"subscribe"}`)

	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 1
	})

	// Channel is implicit per endpoint; the other channel is untouched.
	if got := len(r.SubscribersOf(ChannelArchived)); got != 0 {
		t.Errorf("archived channel unexpectedly has %d subscribers", got)
	}

	conn.push(`{"action":"unsubscribe"}`)
	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 0
	})

	if r.Len() != 1 {
		t.Errorf("unsubscribe must not remove the connection, registry has %d", r.Len())
	}
}

func TestMalformedAndUnknownFramesAreIgnored(t *testing.T) {
	r := NewRegistry()
	conn := newMockConn()
	startClient(r, conn, "alice", ChannelActive)
	defer conn.Close()

	conn.push(`not json`)
	conn.push(`{"action":"shout"}`)
	conn.push(`{"action":"subscribe"}`)

	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 1
	})
	if r.Len() != 1 {
		t.Errorf("expected the connection to survive bad frames, registry has %d", r.Len())
	}
}

func TestTransportCloseRemovesConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	conn := newMockConn()
	startClient(r, conn, "alice", ChannelActive)

	conn.push(`{"action":"subscribe"}`)
	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 1
	})

	conn.Close()
	waitFor(t, time.Second, func() bool {
		return r.Len() == 0
	})

	// A publish after the disconnect reaches no one.
	rendered := 0
	b.Publish(ChannelActive, func(viewer models.Identity) ([]byte, error) {
		rendered++
		return []byte("x"), nil
	})
	if rendered != 0 {
		t.Errorf("publish after disconnect rendered %d times", rendered)
	}
}

func TestWritePumpPushesDeliveredPayloads(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)
	conn := newMockConn()
	startClient(r, conn, "alice", ChannelActive)

	conn.push(`{"action":"subscribe"}`)
	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 1
	})

	b.Publish(ChannelActive, renderName)

	waitFor(t, time.Second, func() bool {
		msgs := conn.sentMessages()
		return len(msgs) == 1 && string(msgs[0]) == "list-for-alice"
	})

	conn.Close()
	waitFor(t, time.Second, func() bool {
		return r.Len() == 0
	})
}

func TestMutationScenarioDeliversOnlyToSubscribers(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	connA := newMockConn()
	startClient(r, connA, "alice", ChannelActive)
	connB := newMockConn()
	startClient(r, connB, "bob", ChannelActive)
	defer connA.Close()
	defer connB.Close()

	// Only alice subscribes; bob stays admitted-but-unsubscribed.
	connA.push(`{"action":"subscribe"}`)
	waitFor(t, time.Second, func() bool {
		return len(r.SubscribersOf(ChannelActive)) == 1
	})

	b.Publish(ChannelActive, renderName)

	waitFor(t, time.Second, func() bool {
		return len(connA.sentMessages()) == 1
	})
	if string(connA.sentMessages()[0]) != "list-for-alice" {
		t.Errorf("expected alice's personalized payload, got %q", connA.sentMessages()[0])
	}

	// Give the pumps a moment; bob must receive nothing.
	time.Sleep(50 * time.Millisecond)
	if got := len(connB.sentMessages()); got != 0 {
		t.Errorf("unsubscribed connection received %d payloads", got)
	}
}
