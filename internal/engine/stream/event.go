// Package stream implements Synap's append-only per-room event logs with
// offset-addressable reads and real-time subscriber fan-out.
package stream

import "time"

// Event is one record appended to a room's log.
type Event struct {
	Offset      uint64
	Type        string
	Data        []byte // opaque JSON value, kept as raw bytes
	PublishedAt time.Time
	ProducerID  string
}

// Retention bounds how much of a room's log is kept, by count and/or age.
// A zero field means that dimension is unbounded.
type Retention struct {
	MaxCount uint64
	MaxAge   time.Duration
}
