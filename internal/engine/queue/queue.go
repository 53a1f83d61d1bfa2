package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hivellm/synap/internal/core/domain"
	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/shared"
)

const priorityLevels = 10

// Config configures a single named queue.
type Config struct {
	MaxDepth     int
	AckDeadline  time.Duration
	RetryCeiling int
	DLQMaxDepth  int
}

// Stats tracks per-queue lifecycle counters: published/consumed/
// acked/nacked/dead-lettered.
type Stats struct {
	Published    uint64
	Consumed     uint64
	Acked        uint64
	Nacked       uint64
	DeadLettered uint64
}

// Queue holds the ready/pending/dead-letter collections for one named queue,
// guarded by a single exclusive lock.
type Queue struct {
	name string
	cfg  Config

	mu      sync.Mutex
	ready   [priorityLevels][]Message // FIFO within each priority level
	pending map[string]*pendingEntry
	dlq     []Message
	stats   Stats

	recorder durability.Recorder
	clock    shared.Clock
}

func newQueue(name string, cfg Config, recorder durability.Recorder, clock shared.Clock) *Queue {
	return &Queue{
		name:     name,
		cfg:      cfg,
		pending:  make(map[string]*pendingEntry),
		recorder: recorder,
		clock:    clock,
	}
}

func (q *Queue) depthLocked() int {
	n := len(q.pending)
	for _, lane := range q.ready {
		n += len(lane)
	}
	return n
}

// Publish appends a message to the ready lane for priority, failing with
// domain.ErrQueueFull if the queue is at max depth.
func (q *Queue) Publish(payload []byte, priority uint8, headers map[string]string) (string, error) {
	if priority >= priorityLevels {
		return "", domain.ErrInvalidArgument.WithDetails("priority must be 0..9")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cfg.MaxDepth > 0 && q.depthLocked() >= q.cfg.MaxDepth {
		return "", domain.ErrQueueFull.WithDetails("queue=" + q.name)
	}

	msg := Message{
		ID:           uuid.NewString(),
		Payload:      append([]byte(nil), payload...),
		Priority:     priority,
		Headers:      headers,
		PublishedAt:  q.clock.Now(),
		RetryCeiling: q.cfg.RetryCeiling,
	}
	q.ready[priority] = append(q.ready[priority], msg)
	q.stats.Published++

	_ = q.recorder.Submit(durability.OpQueuePublish, encodePublish(q.name, msg))
	return msg.ID, nil
}

// Consume pops the highest-priority ready message and moves it to pending,
// atomically under the queue's exclusive lock.
func (q *Queue) Consume(consumerID string) (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for p := priorityLevels - 1; p >= 0; p-- {
		lane := q.ready[p]
		if len(lane) == 0 {
			continue
		}
		msg := lane[0]
		q.ready[p] = lane[1:]

		now := q.clock.Now()
		q.pending[msg.ID] = &pendingEntry{
			msg:         msg,
			consumerID:  consumerID,
			deliveredAt: now,
			ackDeadline: now.Add(q.cfg.AckDeadline),
		}
		q.stats.Consumed++
		// Queue-Consume is deliberately not durable: redelivery on crash recovery is cheaper and simpler
		// than replaying in-flight consumer assignments that may be stale.
		return msg, true
	}
	return Message{}, false
}

// Ack removes a message from pending, completing its delivery.
func (q *Queue) Ack(messageID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[messageID]; !ok {
		return domain.ErrMessageNotFound.WithDetails("queue=" + q.name + " id=" + messageID)
	}
	delete(q.pending, messageID)
	q.stats.Acked++
	_ = q.recorder.Submit(durability.OpQueueAck, encodeAck(q.name, messageID))
	return nil
}

// Nack removes a message from pending and, if requeue is set and the retry
// ceiling hasn't been exceeded, returns it to the tail of its priority lane;
// otherwise it is dead-lettered.
func (q *Queue) Nack(messageID string, requeue bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nackLocked(messageID, requeue)
}

func (q *Queue) nackLocked(messageID string, requeue bool) error {
	entry, ok := q.pending[messageID]
	if !ok {
		return domain.ErrMessageNotFound.WithDetails("queue=" + q.name + " id=" + messageID)
	}
	delete(q.pending, messageID)
	q.stats.Nacked++

	msg := entry.msg
	deadLettered := !requeue || msg.RetryCount >= msg.RetryCeiling
	if deadLettered {
		q.deadLetterLocked(msg)
	} else {
		msg.RetryCount++
		q.ready[msg.Priority] = append(q.ready[msg.Priority], msg)
	}
	_ = q.recorder.Submit(durability.OpQueueNack, encodeNack(q.name, messageID, deadLettered))
	return nil
}

func (q *Queue) deadLetterLocked(msg Message) {
	q.dlq = append(q.dlq, msg)
	if q.cfg.DLQMaxDepth > 0 && len(q.dlq) > q.cfg.DLQMaxDepth {
		q.dlq = q.dlq[len(q.dlq)-q.cfg.DLQMaxDepth:]
	}
	q.stats.DeadLettered++
}

// sweepDeadlines requeues or dead-letters every pending message whose ACK
// deadline has elapsed as of now, and reports the next upcoming deadline so
// the shared expiry scheduler can sleep precisely.
func (q *Queue) sweepDeadlines(now time.Time) (next time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var expiredIDs []string
	haveNext := false
	for id, entry := range q.pending {
		if !entry.ackDeadline.After(now) {
			expiredIDs = append(expiredIDs, id)
			continue
		}
		if !haveNext || entry.ackDeadline.Before(next) {
			next = entry.ackDeadline
			haveNext = true
		}
	}
	for _, id := range expiredIDs {
		_ = q.nackLocked(id, true)
	}
	if !haveNext {
		return time.Time{}
	}
	return next
}

// Stats returns a snapshot of the queue's operation counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// Depth returns the current ready+pending depth.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.depthLocked()
}

// DeadLetters returns a copy of the dead-letter list.
func (q *Queue) DeadLetters() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.dlq))
	copy(out, q.dlq)
	return out
}
