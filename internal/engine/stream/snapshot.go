package stream

// SnapshotRoom is the serializable form of one room, used by the
// durability engine's snapshot writer. Subscribers are not
// carried: live fan-out is ephemeral and reattaches after recovery the
// same way it would after any reconnect.
type SnapshotRoom struct {
	Name       string    `json:"name"`
	Retention  Retention `json:"retention"`
	HeadOffset uint64    `json:"head_offset"`
	TailOffset uint64    `json:"tail_offset"`
	Events     []Event   `json:"events"`
}

// Export returns a serializable snapshot of every room the manager knows
// about.
func (m *Manager) Export() []SnapshotRoom {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]SnapshotRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.export())
	}
	return out
}

func (r *Room) export() SnapshotRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return SnapshotRoom{
		Name:       r.name,
		Retention:  r.retention,
		HeadOffset: r.headOffset,
		TailOffset: r.tailOffset,
		Events:     append([]Event(nil), r.events...),
	}
}

// Import restores a set of previously exported rooms, replacing whatever
// the manager currently holds.
func (m *Manager) Import(snapshots []SnapshotRoom) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sr := range snapshots {
		r := newRoom(sr.Name, sr.Retention, m.cfg.Recorder, m.cfg.Clock)
		r.headOffset = sr.HeadOffset
		r.tailOffset = sr.TailOffset
		r.events = append([]Event(nil), sr.Events...)
		m.rooms[sr.Name] = r
	}
}
