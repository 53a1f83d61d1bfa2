package queue

import "time"

// SnapshotQueue is the serializable form of one named queue, used by the
// durability engine's snapshot writer. Ready keeps one slice per priority
// lane, indexed by priority, so Import puts each message back onto its own
// lane without extra indices.
type SnapshotQueue struct {
	Name    string            `json:"name"`
	Cfg     Config            `json:"cfg"`
	Ready   [priorityLevels][]Message `json:"ready"`
	Pending []SnapshotPending `json:"pending"`
	DLQ     []Message         `json:"dlq"`
	Stats   Stats             `json:"stats"`
}

// SnapshotPending captures one in-flight delivery.
type SnapshotPending struct {
	Message     Message `json:"message"`
	ConsumerID  string  `json:"consumer_id"`
	DeliveredAt int64   `json:"delivered_at"`
	AckDeadline int64   `json:"ack_deadline"`
}

// Export returns a serializable snapshot of every queue the manager knows
// about.
func (m *Manager) Export() []SnapshotQueue {
	m.mu.RLock()
	queues := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.RUnlock()

	out := make([]SnapshotQueue, 0, len(queues))
	for _, q := range queues {
		out = append(out, q.export())
	}
	return out
}

func (q *Queue) export() SnapshotQueue {
	q.mu.Lock()
	defer q.mu.Unlock()

	sq := SnapshotQueue{Name: q.name, Cfg: q.cfg, Stats: q.stats}
	for p := 0; p < priorityLevels; p++ {
		sq.Ready[p] = append([]Message(nil), q.ready[p]...)
	}
	sq.DLQ = append([]Message(nil), q.dlq...)
	for _, pe := range q.pending {
		sq.Pending = append(sq.Pending, SnapshotPending{
			Message:     pe.msg,
			ConsumerID:  pe.consumerID,
			DeliveredAt: pe.deliveredAt.UnixNano(),
			AckDeadline: pe.ackDeadline.UnixNano(),
		})
	}
	return sq
}

// Import restores a set of previously exported queues, replacing whatever
// the manager currently holds. Used at startup to replay the latest
// snapshot before the WAL tail.
func (m *Manager) Import(snapshots []SnapshotQueue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sq := range snapshots {
		q := newQueue(sq.Name, sq.Cfg, m.cfg.Recorder, m.cfg.Clock)
		q.ready = sq.Ready
		q.dlq = append([]Message(nil), sq.DLQ...)
		q.stats = sq.Stats
		for _, sp := range sq.Pending {
			q.pending[sp.Message.ID] = &pendingEntry{
				msg:         sp.Message,
				consumerID:  sp.ConsumerID,
				deliveredAt: nanoToTime(sp.DeliveredAt),
				ackDeadline: nanoToTime(sp.AckDeadline),
			}
		}
		m.queues[sq.Name] = q
	}
}

func nanoToTime(nanos int64) time.Time {
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}
