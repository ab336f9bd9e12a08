package realtime

import (
	"errors"
	"fmt"
	"testing"

	"github.com/janmaslov/wishlist/internal/models"
)

func renderName(viewer models.Identity) ([]byte, error) {
	return []byte("list-for-" + viewer.Name), nil
}

func TestPublishDeliversExactlyOncePerSubscriber(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	c1 := newTestClient(r, "alice", ChannelActive)
	c2 := newTestClient(r, "bob", ChannelActive)
	c3 := newTestClient(r, "carol", ChannelArchived)

	for _, c := range []*Client{c1, c2, c3} {
		r.Admit(c)
		r.Subscribe(c.ID(), c.channel)
	}

	b.Publish(ChannelActive, renderName)

	if got := drainPayloads(c1); len(got) != 1 || string(got[0]) != "list-for-alice" {
		t.Errorf("c1: expected one personalized payload, got %q", got)
	}
	if got := drainPayloads(c2); len(got) != 1 || string(got[0]) != "list-for-bob" {
		t.Errorf("c2: expected one personalized payload, got %q", got)
	}
	if got := drainPayloads(c3); len(got) != 0 {
		t.Errorf("c3 subscribed to a different channel, got %d payloads", len(got))
	}
}

func TestPublishSkipsUnsubscribedConnections(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	subscribed := newTestClient(r, "alice", ChannelActive)
	admittedOnly := newTestClient(r, "bob", ChannelActive)

	r.Admit(subscribed)
	r.Admit(admittedOnly)
	r.Subscribe(subscribed.ID(), ChannelActive)

	b.Publish(ChannelActive, renderName)

	if got := drainPayloads(subscribed); len(got) != 1 {
		t.Errorf("subscribed connection expected 1 payload, got %d", len(got))
	}
	if got := drainPayloads(admittedOnly); len(got) != 0 {
		t.Errorf("admitted-but-unsubscribed connection got %d payloads", len(got))
	}
}

func TestPublishRenderFailureIsIsolated(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	c1 := newTestClient(r, "alice", ChannelActive)
	c2 := newTestClient(r, "bob", ChannelActive)
	for _, c := range []*Client{c1, c2} {
		r.Admit(c)
		r.Subscribe(c.ID(), ChannelActive)
	}

	b.Publish(ChannelActive, func(viewer models.Identity) ([]byte, error) {
		if viewer.Name == "alice" {
			return nil, errors.New("render boom")
		}
		return renderName(viewer)
	})

	if got := drainPayloads(c1); len(got) != 0 {
		t.Errorf("failed render still produced %d payloads", len(got))
	}
	if got := drainPayloads(c2); len(got) != 1 {
		t.Errorf("healthy subscriber expected 1 payload despite peer failure, got %d", len(got))
	}

	// The failed subscriber stays registered; only its own close removes it.
	if got := len(r.SubscribersOf(ChannelActive)); got != 2 {
		t.Errorf("expected both subscribers to stay registered, got %d", got)
	}
}

func TestPublishDeliveryFailureDoesNotEvict(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	stuck := newTestClient(r, "alice", ChannelActive)
	healthy := newTestClient(r, "bob", ChannelActive)
	for _, c := range []*Client{stuck, healthy} {
		r.Admit(c)
		r.Subscribe(c.ID(), ChannelActive)
	}

	// Saturate the stuck client's send buffer so the next delivery fails.
	for i := 0; ; i++ {
		if err := stuck.Deliver([]byte("filler")); err != nil {
			break
		}
		if i > 1000 {
			t.Fatal("send buffer never filled")
		}
	}

	b.Publish(ChannelActive, renderName)

	if got := drainPayloads(healthy); len(got) != 1 {
		t.Errorf("healthy subscriber expected 1 payload, got %d", len(got))
	}
	if got := len(r.SubscribersOf(ChannelActive)); got != 2 {
		t.Errorf("delivery failure must not evict, expected 2 subscribers, got %d", got)
	}
}

func TestPublishUnknownChannelIsDropped(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	c := newTestClient(r, "alice", ChannelActive)
	r.Admit(c)
	r.Subscribe(c.ID(), ChannelActive)

	called := false
	b.Publish(Channel("refreshTypo"), func(models.Identity) ([]byte, error) {
		called = true
		return nil, nil
	})

	if called {
		t.Error("render ran for an unknown channel")
	}
	if got := drainPayloads(c); len(got) != 0 {
		t.Errorf("unknown channel delivered %d payloads", len(got))
	}
}

func TestPublishPreservesOrderPerConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	c := newTestClient(r, "alice", ChannelActive)
	r.Admit(c)
	r.Subscribe(c.ID(), ChannelActive)

	for i := 0; i < 5; i++ {
		seq := i
		b.Publish(ChannelActive, func(models.Identity) ([]byte, error) {
			return []byte(fmt.Sprintf("event-%d", seq)), nil
		})
	}

	got := drainPayloads(c)
	if len(got) != 5 {
		t.Fatalf("expected 5 payloads, got %d", len(got))
	}
	for i, payload := range got {
		if want := fmt.Sprintf("event-%d", i); string(payload) != want {
			t.Errorf("payload %d: expected %q, got %q", i, want, payload)
		}
	}
}

func TestPublishToSameUserTwiceDeliversPerConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	// Same user in two browser tabs: two independent connections.
	identity := testIdentity("alice", false)
	c1 := newClient(r, newMockConn(), identity, ChannelArchived)
	c2 := newClient(r, newMockConn(), identity, ChannelArchived)

	for _, c := range []*Client{c1, c2} {
		r.Admit(c)
		r.Subscribe(c.ID(), ChannelArchived)
	}

	b.Publish(ChannelArchived, renderName)

	for i, c := range []*Client{c1, c2} {
		got := drainPayloads(c)
		if len(got) != 1 || string(got[0]) != "list-for-alice" {
			t.Errorf("connection %d: expected one payload rendered for alice, got %q", i+1, got)
		}
	}
}

func TestPublishAfterDisconnectDeliversNothing(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r)

	c := newTestClient(r, "alice", ChannelActive)
	r.Admit(c)
	r.Subscribe(c.ID(), ChannelActive)
	r.Remove(c.ID())

	rendered := 0
	b.Publish(ChannelActive, func(viewer models.Identity) ([]byte, error) {
		rendered++
		return renderName(viewer)
	})

	if rendered != 0 {
		t.Errorf("render ran %d times for a disconnected subscriber", rendered)
	}
	if got := drainPayloads(c); len(got) != 0 {
		t.Errorf("disconnected connection received %d payloads", len(got))
	}
}

func TestDeliverAfterCloseReturnsError(t *testing.T) {
	r := NewRegistry()
	c := newTestClient(r, "alice", ChannelActive)
	r.Admit(c)
	r.Remove(c.ID())

	if err := c.Deliver([]byte("late")); !errors.Is(err, ErrClientClosed) {
		t.Errorf("expected ErrClientClosed, got %v", err)
	}
}
