package realtime

import (
	"log/slog"
	"sync"

	"github.com/janmaslov/wishlist/internal/models"
)

// RenderFunc computes the payload for one viewer. Rendering is per-subscriber
// because the view depends on the viewer's permissions, it is not a broadcast
// of identical bytes.
type RenderFunc func(viewer models.Identity) ([]byte, error)

// Publisher is the mutation-side interface to the broadcaster.
type Publisher interface {
	Publish(ch Channel, render RenderFunc)
}

// Broadcaster fans a fresh snapshot out to every current subscriber of a
// channel. Fan-outs on the same channel run one at a time, which together
// with each client's ordered send queue preserves publish order per
// connection. Different channels publish independently.
type Broadcaster struct {
	registry *Registry
	locks    map[Channel]*sync.Mutex
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	locks := make(map[Channel]*sync.Mutex, len(Channels()))
	for _, ch := range Channels() {
		locks[ch] = &sync.Mutex{}
	}
	return &Broadcaster{
		registry: registry,
		locks:    locks,
	}
}

// Publish renders and pushes one snapshot per current subscriber. A render or
// delivery failure is contained to that subscriber: it is logged, the rest of
// the fan-out proceeds, and the connection stays registered until its own
// close signal fires.
func (b *Broadcaster) Publish(ch Channel, render RenderFunc) {
	lock, ok := b.locks[ch]
	if !ok {
		slog.Warn("Publish to unknown channel dropped", "channel", ch)
		return
	}

	lock.Lock()
	defer lock.Unlock()

	subs := b.registry.SubscribersOf(ch)
	delivered := 0
	for _, sub := range subs {
		payload, err := render(sub.Identity())
		if err != nil {
			slog.Error("Snapshot render failed", "channel", ch, "clientID", sub.ID(), "error", err)
			continue
		}

		if err := sub.Deliver(payload); err != nil {
			slog.Warn("Snapshot delivery failed", "channel", ch, "clientID", sub.ID(), "error", err)
			continue
		}
		delivered++
	}

	slog.Debug("Publish complete", "channel", ch, "subscribers", len(subs), "delivered", delivered)
}
