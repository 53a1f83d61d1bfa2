package stream

import (
	"sync"
	"time"

	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/shared"
)

// SubscriberBuffer is the default bounded outbound channel size per live
// subscriber.
const SubscriberBuffer = 256

// subscriber is a registered (room, subscriber-id, cursor) tuple with a
// live outbound channel.
type subscriber struct {
	id     string
	cursor uint64
	out    chan Event
}

// Room is a named, append-only log of events, guarded by a reader/writer
// lock.
type Room struct {
	name string

	mu          sync.RWMutex
	events       []Event // dense window [headOffset, tailOffset)
	headOffset   uint64
	tailOffset   uint64
	subscribers  map[string]*subscriber
	retention    Retention

	recorder durability.Recorder
	clock    shared.Clock
}

func newRoom(name string, retention Retention, recorder durability.Recorder, clock shared.Clock) *Room {
	return &Room{
		name:        name,
		subscribers: make(map[string]*subscriber),
		retention:   retention,
		recorder:    recorder,
		clock:       clock,
	}
}

// Publish appends an event, enforces retention, logs a WAL record, and
// fans the event out to every subscriber whose cursor has reached it.
func (r *Room) Publish(eventType string, data []byte, producerID string) uint64 {
	r.mu.Lock()

	offset := r.tailOffset
	now := r.clock.Now()
	ev := Event{Offset: offset, Type: eventType, Data: append([]byte(nil), data...), PublishedAt: now, ProducerID: producerID}
	r.events = append(r.events, ev)
	r.tailOffset++

	r.enforceRetentionLocked(now)

	live := make([]*subscriber, 0, len(r.subscribers))
	for _, sub := range r.subscribers {
		if sub.cursor <= offset {
			live = append(live, sub)
		}
	}
	r.mu.Unlock()

	_ = r.recorder.Submit(durability.OpStreamPublish, encodePublish(r.name, ev))

	for _, sub := range live {
		select {
		case sub.out <- ev:
		default:
			// Lag-kill policy: the slowest subscriber is
			// dropped rather than blocking the publisher or the rest of the
			// fan-out.
			r.dropSubscriber(sub.id)
		}
	}
	return offset
}

func (r *Room) enforceRetentionLocked(now time.Time) {
	for r.retention.MaxCount > 0 && uint64(len(r.events)) > r.retention.MaxCount {
		r.events = r.events[1:]
		r.headOffset++
	}
	if r.retention.MaxAge > 0 {
		cutoff := now.Add(-r.retention.MaxAge)
		for len(r.events) > 0 && r.events[0].PublishedAt.Before(cutoff) {
			r.events = r.events[1:]
			r.headOffset++
		}
	}
}

// Consume returns events in [max(fromOffset, head), min(fromOffset+limit,
// tail)).
func (r *Room) Consume(fromOffset uint64, limit int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := fromOffset
	if start < r.headOffset {
		start = r.headOffset
	}
	if start >= r.tailOffset {
		return nil
	}
	end := start + uint64(limit)
	if end > r.tailOffset {
		end = r.tailOffset
	}

	startIdx := start - r.headOffset
	endIdx := end - r.headOffset
	out := make([]Event, endIdx-startIdx)
	copy(out, r.events[startIdx:endIdx])
	return out
}

// Observe registers subscriberID with a cursor clamped to head-offset and
// returns its live outbound channel plus a backlog snapshot to deliver
// first.
func (r *Room) Observe(subscriberID string, fromOffset uint64) (backlog []Event, out <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cursor := fromOffset
	if cursor < r.headOffset {
		cursor = r.headOffset
	}

	ch := make(chan Event, SubscriberBuffer)
	r.subscribers[subscriberID] = &subscriber{id: subscriberID, cursor: r.tailOffset, out: ch}

	if cursor < r.tailOffset {
		startIdx := cursor - r.headOffset
		backlog = make([]Event, len(r.events)-int(startIdx))
		copy(backlog, r.events[startIdx:])
	}
	return backlog, ch
}

// Unsubscribe removes a registered subscriber and closes its channel.
func (r *Room) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	sub, ok := r.subscribers[subscriberID]
	if ok {
		delete(r.subscribers, subscriberID)
	}
	r.mu.Unlock()
	if ok {
		close(sub.out)
	}
}

func (r *Room) dropSubscriber(subscriberID string) {
	r.mu.Lock()
	sub, ok := r.subscribers[subscriberID]
	if ok {
		delete(r.subscribers, subscriberID)
	}
	r.mu.Unlock()
	if ok {
		close(sub.out)
	}
}

// TailOffset returns the next offset to be assigned.
func (r *Room) TailOffset() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tailOffset
}

// HeadOffset returns the first retained offset.
func (r *Room) HeadOffset() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.headOffset
}
