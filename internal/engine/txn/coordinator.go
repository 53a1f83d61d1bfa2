// Package txn implements Redis-style WATCH/MULTI/EXEC/DISCARD/UNWATCH
// optimistic-locking transactions over the KV engine, keyed by an opaque
// client id.
package txn

import (
	"sync"

	"github.com/hivellm/synap/internal/core/domain"
	"github.com/hivellm/synap/internal/engine/kv"
)

// clientState is one client's watch set and queued operations.
type clientState struct {
	watched map[string]uint64 // key -> version at WATCH time
	queuing bool
	queue   []kv.TxnOp
}

// Coordinator tracks per-client transaction state and executes EXEC
// against a KV store.
type Coordinator struct {
	store *kv.Store

	mu      sync.Mutex
	clients map[string]*clientState
}

func NewCoordinator(store *kv.Store) *Coordinator {
	return &Coordinator{store: store, clients: make(map[string]*clientState)}
}

func (c *Coordinator) stateFor(clientID string) *clientState {
	st, ok := c.clients[clientID]
	if !ok {
		st = &clientState{watched: make(map[string]uint64)}
		c.clients[clientID] = st
	}
	return st
}

// Watch records the current version of key for clientID.
func (c *Coordinator) Watch(clientID, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stateFor(clientID)
	st.watched[key] = c.store.Version(key)
}

// Unwatch clears clientID's watch set without touching its queue.
func (c *Coordinator) Unwatch(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.clients[clientID]; ok {
		st.watched = make(map[string]uint64)
	}
}

// Multi begins queueing for clientID.
func (c *Coordinator) Multi(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.stateFor(clientID)
	st.queuing = true
	st.queue = nil
}

// Queue appends op to clientID's pending transaction. Returns
// domain.ErrInvalidArgument if clientID has not called Multi.
func (c *Coordinator) Queue(clientID string, op kv.TxnOp) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.clients[clientID]
	if !ok || !st.queuing {
		return domain.ErrInvalidArgument.WithDetails("MULTI not called")
	}
	st.queue = append(st.queue, op)
	return nil
}

// Discard clears clientID's queue without executing it.
func (c *Coordinator) Discard(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.clients[clientID]; ok {
		st.queuing = false
		st.queue = nil
		st.watched = make(map[string]uint64)
	}
}

// Exec runs clientID's queued ops atomically if every watched key's
// version is unchanged; otherwise it aborts and clears the queue. aborted=true with a nil error means the condition failed, not a
// system error.
func (c *Coordinator) Exec(clientID string) (results []kv.TxnResult, aborted bool, err error) {
	c.mu.Lock()
	st, ok := c.clients[clientID]
	if !ok || !st.queuing {
		c.mu.Unlock()
		return nil, false, domain.ErrInvalidArgument.WithDetails("MULTI not called")
	}
	watched := make([]string, 0, len(st.watched))
	expected := make(map[string]uint64, len(st.watched))
	for k, v := range st.watched {
		watched = append(watched, k)
		expected[k] = v
	}
	ops := append([]kv.TxnOp(nil), st.queue...)
	st.queuing = false
	st.queue = nil
	st.watched = make(map[string]uint64)
	c.mu.Unlock()

	return c.store.ExecTxn(watched, expected, ops)
}
