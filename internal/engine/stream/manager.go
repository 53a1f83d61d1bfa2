package stream

import (
	"sync"

	"github.com/hivellm/synap/internal/core/domain"
	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/shared"
)

// ManagerConfig configures default per-room retention applied when a room
// is created implicitly on first publish.
type ManagerConfig struct {
	DefaultRetention Retention
	Recorder         durability.Recorder
	Clock            shared.Clock
}

// Manager owns the set of named stream rooms.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   ManagerConfig
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Recorder == nil {
		cfg.Recorder = durability.NopRecorder{}
	}
	if cfg.Clock == nil {
		cfg.Clock = shared.NewSystemClock()
	}
	return &Manager{rooms: make(map[string]*Room), cfg: cfg}
}

// GetOrCreate returns the named room, creating it with default retention
// (and logging a Stream-Create record) if it doesn't exist yet.
func (m *Manager) GetOrCreate(name string) *Room {
	m.mu.RLock()
	r, ok := m.rooms[name]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		return r
	}
	r = newRoom(name, m.cfg.DefaultRetention, m.cfg.Recorder, m.cfg.Clock)
	m.rooms[name] = r
	_ = m.cfg.Recorder.Submit(durability.OpStreamCreate, encodeCreate(name))
	return r
}

// Get returns the named room, or false if it has not been created.
func (m *Manager) Get(name string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[name]
	return r, ok
}

// Publish is a convenience wrapper that creates the room on demand.
func (m *Manager) Publish(room, eventType string, data []byte, producerID string) uint64 {
	return m.GetOrCreate(room).Publish(eventType, data, producerID)
}

// Consume proxies to the named room, failing with ErrRoomNotFound if absent.
func (m *Manager) Consume(room string, fromOffset uint64, limit int) ([]Event, error) {
	r, ok := m.Get(room)
	if !ok {
		return nil, domain.ErrRoomNotFound.WithDetails("room=" + room)
	}
	return r.Consume(fromOffset, limit), nil
}

// Observe proxies to the named room, creating it on demand so a subscriber
// can attach before the first publish.
func (m *Manager) Observe(room, subscriberID string, fromOffset uint64) (backlog []Event, out <-chan Event) {
	return m.GetOrCreate(room).Observe(subscriberID, fromOffset)
}

// Unsubscribe proxies to the named room.
func (m *Manager) Unsubscribe(room, subscriberID string) {
	if r, ok := m.Get(room); ok {
		r.Unsubscribe(subscriberID)
	}
}
