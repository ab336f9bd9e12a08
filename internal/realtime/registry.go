package realtime

import (
	"log/slog"
	"sync"
)

// Registry is the single shared mutable resource of the realtime core: the
// process-wide set of live connections and their channel subscriptions. All
// access is serialized behind one RWMutex; SubscribersOf hands out snapshot
// copies so no caller ever iterates shared state.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]*entry
	channels map[Channel]map[string]*entry // per-channel membership index
}

type entry struct {
	client   *Client
	channels map[Channel]struct{}
}

func NewRegistry() *Registry {
	channels := make(map[Channel]map[string]*entry, len(Channels()))
	for _, ch := range Channels() {
		channels[ch] = make(map[string]*entry)
	}
	return &Registry{
		conns:    make(map[string]*entry),
		channels: channels,
	}
}

// Admit registers an authenticated connection with an empty subscription set.
func (r *Registry) Admit(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c.id] = &entry{
		client:   c,
		channels: make(map[Channel]struct{}),
	}

	slog.Info("Connection admitted", "clientID", c.id, "user", c.identity.Name)
}

// Subscribe adds the connection to a channel. Idempotent; unknown connection
// ids (already removed) are a no-op, never an error.
func (r *Registry) Subscribe(id string, ch Channel) {
	if !ch.Valid() {
		slog.Warn("Subscribe to unknown channel ignored", "clientID", id, "channel", ch)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[id]
	if !ok {
		return
	}

	e.channels[ch] = struct{}{}
	r.channels[ch][id] = e

	slog.Debug("Subscribed", "clientID", id, "channel", ch)
}

// Unsubscribe removes the connection from a channel; no-op for unknown ids
// or channels the connection never joined.
func (r *Registry) Unsubscribe(id string, ch Channel) {
	if !ch.Valid() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.conns[id]
	if !ok {
		return
	}

	delete(e.channels, ch)
	delete(r.channels[ch], id)

	slog.Debug("Unsubscribed", "clientID", id, "channel", ch)
}

// Remove deletes the connection entirely and terminates its write pump.
// Idempotent: disconnect notifications race with explicit removal, and the
// second caller finds nothing to do. Once Remove returns, the id is invisible
// to SubscribersOf.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
		for ch := range e.channels {
			delete(r.channels[ch], id)
		}
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	e.client.closeSend()
	slog.Info("Connection removed", "clientID", id, "user", e.client.identity.Name)
}

// SubscribersOf returns a stable snapshot of the channel's current members.
// The slice is the caller's own; concurrent admits and removes never tear it.
func (r *Registry) SubscribersOf(ch Channel) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.channels[ch]
	subs := make([]*Client, 0, len(members))
	for _, e := range members {
		subs = append(subs, e.client)
	}
	return subs
}

// Len reports the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Close removes every connection, used at server shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.conns))
	for id, e := range r.conns {
		entries = append(entries, e)
		delete(r.conns, id)
	}
	for _, members := range r.channels {
		for id := range members {
			delete(members, id)
		}
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.client.closeSend()
	}

	slog.Info("Registry closed", "connections", len(entries))
}
