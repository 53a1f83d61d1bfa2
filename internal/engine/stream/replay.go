package stream

import (
	"encoding/json"

	"github.com/hivellm/synap/internal/durability"
)

// Apply replays one durable record against the manager. It is used only
// during WAL recovery, against a manager whose Recorder is
// durability.NopRecorder so replay never re-logs what it is replaying
//. There are no subscribers yet at replay time, so events
// are appended without any fan-out.
func (m *Manager) Apply(tag durability.OpTag, payload []byte) error {
	switch tag {
	case durability.OpStreamCreate:
		var p createPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		m.GetOrCreate(p.Room)
		return nil

	case durability.OpStreamPublish:
		var p publishPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		r := m.GetOrCreate(p.Room)
		r.applyPublish(p)
		return nil

	default:
		return nil // not a stream-family tag; the engine dispatcher routes elsewhere
	}
}

func (r *Room) applyPublish(p publishPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	ev := Event{Offset: p.Offset, Type: p.Type, Data: p.Data, PublishedAt: now, ProducerID: p.ProducerID}
	r.events = append(r.events, ev)
	r.tailOffset = p.Offset + 1
	r.enforceRetentionLocked(now)
}
