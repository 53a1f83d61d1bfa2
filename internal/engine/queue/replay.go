package queue

import (
	"encoding/json"

	"github.com/hivellm/synap/internal/durability"
)

// Apply replays one durable record against the manager. It is used only
// during WAL recovery, against a manager whose Recorder is
// durability.NopRecorder so replay never re-logs what it is replaying.
//
// Consume is not a durable operation: a message the WAL shows as published
// but never acked/nacked is replayed back into its ready lane, as if it
// were never consumed, which is the safe (at-least-once) outcome.
func (m *Manager) Apply(tag durability.OpTag, payload []byte) error {
	switch tag {
	case durability.OpQueueCreate:
		var p createPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		m.GetOrCreate(p.Queue)
		return nil

	case durability.OpQueuePublish:
		var p publishPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		q := m.GetOrCreate(p.Queue)
		q.applyPublish(p)
		return nil

	case durability.OpQueueAck:
		var p ackPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		if q, ok := m.Get(p.Queue); ok {
			q.applyAck(p.ID)
		}
		return nil

	case durability.OpQueueNack:
		var p nackPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		if q, ok := m.Get(p.Queue); ok {
			q.applyNack(p.ID, p.DeadLettered)
		}
		return nil

	default:
		return nil // not a queue-family tag; the engine dispatcher routes elsewhere
	}
}

func (q *Queue) applyPublish(p publishPayload) {
	q.mu.Lock()
	defer q.mu.Unlock()
	msg := Message{
		ID:           p.ID,
		Payload:      p.Payload,
		Priority:     p.Priority,
		Headers:      p.Headers,
		PublishedAt:  q.clock.Now(),
		RetryCeiling: q.cfg.RetryCeiling,
	}
	q.ready[p.Priority] = append(q.ready[p.Priority], msg)
	q.stats.Published++
}

// findInReadyLocked scans every priority lane for messageID. Caller must
// hold q.mu.
func (q *Queue) findInReadyLocked(messageID string) (priority uint8, index int, ok bool) {
	for p := 0; p < priorityLevels; p++ {
		for i, msg := range q.ready[p] {
			if msg.ID == messageID {
				return uint8(p), i, true
			}
		}
	}
	return 0, 0, false
}

func (q *Queue) applyAck(messageID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[messageID]; ok {
		delete(q.pending, messageID)
		q.stats.Acked++
		return
	}
	if p, i, ok := q.findInReadyLocked(messageID); ok {
		q.ready[p] = append(q.ready[p][:i], q.ready[p][i+1:]...)
		q.stats.Acked++
	}
}

func (q *Queue) applyNack(messageID string, deadLettered bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var msg Message
	found := false
	if entry, ok := q.pending[messageID]; ok {
		msg = entry.msg
		delete(q.pending, messageID)
		found = true
	} else if p, i, ok := q.findInReadyLocked(messageID); ok {
		msg = q.ready[p][i]
		q.ready[p] = append(q.ready[p][:i], q.ready[p][i+1:]...)
		found = true
	}
	if !found {
		return
	}

	q.stats.Nacked++
	if deadLettered {
		q.deadLetterLocked(msg)
		return
	}
	msg.RetryCount++
	q.ready[msg.Priority] = append(q.ready[msg.Priority], msg)
}
