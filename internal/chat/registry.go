package chat

import (
	"sync"

	"github.com/samber/lo"
)

// Outbox is the write side of one live connection. Implementations must be
// safe for concurrent use and must not block; a full or closed send path is
// reported through the returned error.
type Outbox interface {
	Deliver(payload []byte) error
}

// Recipient pairs a connection identifier with its outbox, as captured in a
// registry snapshot.
type Recipient struct {
	ID     string
	Outbox Outbox
}

// Registry tracks which connections are currently open and registered. It is
// the only shared mutable state in the core; every read and write is
// serialized behind the mutex so concurrent connection lifecycles cannot
// corrupt it or lose an update.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Outbox
}

// NewRegistry returns an empty registry ready for concurrent use.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Outbox)}
}

// Add registers a connection's presence. Adding an identifier that is already
// present overwrites its outbox; duplicate adds are not an error.
func (r *Registry) Add(id string, out Outbox) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = out
}

// Remove deregisters a connection and reports whether it was present.
// Removing an unknown identifier is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[id]
	delete(r.conns, id)
	return ok
}

// Count returns the number of currently registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Get looks up the outbox for a single connection.
func (r *Registry) Get(id string) (Outbox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out, ok := r.conns[id]
	return out, ok
}

// Snapshot returns the registered connections at this instant. A connection
// that disconnects after the snapshot is taken may still appear in it;
// delivery to it is best-effort.
func (r *Registry) Snapshot() []Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(r.conns, func(id string, out Outbox) Recipient {
		return Recipient{ID: id, Outbox: out}
	})
}
