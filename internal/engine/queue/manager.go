package queue

import (
	"sync"
	"time"

	"github.com/hivellm/synap/internal/core/domain"
	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/shared"
	"github.com/hivellm/synap/internal/shared/expiry"
)

// ManagerConfig configures default per-queue settings applied when a queue
// is created implicitly on first publish.
type ManagerConfig struct {
	DefaultMaxDepth     int
	DefaultAckDeadline  time.Duration
	DefaultRetryCeiling int
	DefaultDLQMaxDepth  int
	DeadlineScanEvery   time.Duration
	Recorder            durability.Recorder
	Clock               shared.Clock
}

// Manager owns the set of named queues and the shared ACK-deadline sweep.
type Manager struct {
	mu     sync.RWMutex
	queues map[string]*Queue

	cfg       ManagerConfig
	scheduler *expiry.Scheduler
}

// NewManager constructs a Manager and starts its deadline sweep.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.DefaultAckDeadline <= 0 {
		cfg.DefaultAckDeadline = 30 * time.Second
	}
	if cfg.DeadlineScanEvery <= 0 {
		cfg.DeadlineScanEvery = 100 * time.Millisecond
	}
	if cfg.Recorder == nil {
		cfg.Recorder = durability.NopRecorder{}
	}
	if cfg.Clock == nil {
		cfg.Clock = shared.NewSystemClock()
	}

	m := &Manager{
		queues: make(map[string]*Queue),
		cfg:    cfg,
	}
	m.scheduler = expiry.New(m.sweep, cfg.DeadlineScanEvery)
	m.scheduler.Start()
	return m
}

// Close stops the background deadline sweep.
func (m *Manager) Close() { m.scheduler.Stop() }

func (m *Manager) defaultQueueConfig() Config {
	return Config{
		MaxDepth:     m.cfg.DefaultMaxDepth,
		AckDeadline:  m.cfg.DefaultAckDeadline,
		RetryCeiling: m.cfg.DefaultRetryCeiling,
		DLQMaxDepth:  m.cfg.DefaultDLQMaxDepth,
	}
}

// GetOrCreate returns the named queue, creating it with default settings
// (and logging a Queue-Create record) if it doesn't exist yet.
func (m *Manager) GetOrCreate(name string) *Queue {
	m.mu.RLock()
	q, ok := m.queues[name]
	m.mu.RUnlock()
	if ok {
		return q
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[name]; ok {
		return q
	}
	q = newQueue(name, m.defaultQueueConfig(), m.cfg.Recorder, m.cfg.Clock)
	m.queues[name] = q
	_ = m.cfg.Recorder.Submit(durability.OpQueueCreate, encodeCreate(name))
	return q
}

// Get returns the named queue, or false if it has not been created.
func (m *Manager) Get(name string) (*Queue, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queues[name]
	return q, ok
}

// Publish is a convenience wrapper that creates the queue on demand.
func (m *Manager) Publish(queue string, payload []byte, priority uint8, headers map[string]string) (string, error) {
	return m.GetOrCreate(queue).Publish(payload, priority, headers)
}

// Consume returns the next ready message for consumerID, or
// domain.ErrQueueNotFound if the queue was never created.
func (m *Manager) Consume(queue, consumerID string) (Message, bool, error) {
	q, ok := m.Get(queue)
	if !ok {
		return Message{}, false, domain.ErrQueueNotFound.WithDetails("queue=" + queue)
	}
	msg, found := q.Consume(consumerID)
	if found {
		// A new ACK deadline now exists; wake the sweep, which may be idle.
		m.scheduler.Poke()
	}
	return msg, found, nil
}

// Ack/Nack proxy to the named queue, failing with ErrQueueNotFound if absent.
func (m *Manager) Ack(queue, messageID string) error {
	q, ok := m.Get(queue)
	if !ok {
		return domain.ErrQueueNotFound.WithDetails("queue=" + queue)
	}
	return q.Ack(messageID)
}

func (m *Manager) Nack(queue, messageID string, requeue bool) error {
	q, ok := m.Get(queue)
	if !ok {
		return domain.ErrQueueNotFound.WithDetails("queue=" + queue)
	}
	return q.Nack(messageID, requeue)
}

// sweep runs every queue's deadline sweep and returns the soonest upcoming
// deadline across all of them.
func (m *Manager) sweep(now time.Time) time.Time {
	m.mu.RLock()
	queues := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		queues = append(queues, q)
	}
	m.mu.RUnlock()

	var soonest time.Time
	haveSoonest := false
	for _, q := range queues {
		next := q.sweepDeadlines(now)
		if next.IsZero() {
			continue
		}
		if !haveSoonest || next.Before(soonest) {
			soonest = next
			haveSoonest = true
		}
	}
	return soonest
}
