package kv

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/shared"
	"github.com/hivellm/synap/internal/shared/expiry"
)

// EvictionPolicy selects which key a full store evicts first.
type EvictionPolicy string

const (
	EvictionNone EvictionPolicy = "none"
	EvictionLRU  EvictionPolicy = "lru"
	EvictionLFU  EvictionPolicy = "lfu"
)

// Config configures a Store. ShardCount must be a power of two.
type Config struct {
	ShardCount     uint32
	MaxMemoryBytes int64
	MaxValueBytes  int64
	Eviction       EvictionPolicy
	Recorder       durability.Recorder
	Clock          shared.Clock
	ExpirySweep    time.Duration
}

// Store is Synap's sharded in-memory KV engine. Every key hashes to exactly
// one shard; cross-key operations lock shards in ascending
// index order to avoid deadlock.
type Store struct {
	shards     []*shard
	shardCount uint32

	maxMemory     int64
	maxValueBytes int64
	eviction      EvictionPolicy

	recorder durability.Recorder
	clock    shared.Clock

	memUsed   atomic.Int64
	scheduler *expiry.Scheduler
}

// New constructs a Store and starts its background expiry sweep.
func New(cfg Config) *Store {
	if cfg.ShardCount == 0 {
		cfg.ShardCount = DefaultShardCount
	}
	if cfg.Recorder == nil {
		cfg.Recorder = durability.NopRecorder{}
	}
	if cfg.Clock == nil {
		cfg.Clock = shared.NewSystemClock()
	}
	if cfg.ExpirySweep <= 0 {
		cfg.ExpirySweep = 100 * time.Millisecond
	}

	s := &Store{
		shards:        make([]*shard, cfg.ShardCount),
		shardCount:    cfg.ShardCount,
		maxMemory:     cfg.MaxMemoryBytes,
		maxValueBytes: cfg.MaxValueBytes,
		eviction:      cfg.Eviction,
		recorder:      cfg.Recorder,
		clock:         cfg.Clock,
	}
	for i := range s.shards {
		s.shards[i] = newShard()
	}
	s.scheduler = expiry.New(s.sweepExpired, cfg.ExpirySweep)
	s.scheduler.Start()
	return s
}

// Close stops the background expiry sweep. It does not release memory.
func (s *Store) Close() {
	s.scheduler.Stop()
}

func (s *Store) shardFor(key string) *shard {
	return s.shards[shardIndex(key, s.shardCount)]
}

func (s *Store) now() time.Time { return s.clock.Now() }

// sweepExpired is the expiry.Sweep callback: it pops expired keys from every
// shard, logs a KV-Del(expired=true) WAL record for each, and reports the
// soonest upcoming deadline across all shards so the scheduler can sleep
// precisely until then instead of polling.
func (s *Store) sweepExpired(now time.Time) time.Time {
	nowNano := now.UnixNano()
	var soonest int64
	haveSoonest := false

	for _, sh := range s.shards {
		sh.mu.Lock()
		expiredKeys := sh.popExpiredLocked(nowNano)
		for _, k := range expiredKeys {
			s.record(durability.OpKVDel, delPayload{Key: k, Expired: true})
		}
		if next, ok := sh.nextExpiryLocked(); ok {
			if !haveSoonest || next < soonest {
				soonest = next
				haveSoonest = true
			}
		}
		sh.mu.Unlock()
	}
	if !haveSoonest {
		return time.Time{}
	}
	return time.Unix(0, soonest)
}

// --- generic helpers shared by every typed operation file ---

func (s *Store) getLive(sh *shard, key string, now time.Time) (*entry, bool) {
	e, ok := sh.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(now) {
		return nil, false
	}
	return e, true
}

// adjustMemory applies a size delta and, if the store is now over its
// configured ceiling, evicts keys under the configured policy until back
// under budget.
func (s *Store) adjustMemory(delta int64) {
	if s.maxMemory <= 0 {
		s.memUsed.Add(delta)
		return
	}
	used := s.memUsed.Add(delta)
	if used <= s.maxMemory || s.eviction == EvictionNone {
		return
	}
	s.evictUntilUnderBudget()
}

func (s *Store) evictUntilUnderBudget() {
	for s.memUsed.Load() > s.maxMemory {
		key, shIdx, freed := s.selectEvictionCandidate()
		if key == "" {
			return // nothing left to evict
		}
		sh := s.shards[shIdx]
		sh.mu.Lock()
		if live, ok := sh.entries[key]; ok {
			delete(sh.entries, key)
			sh.tombstone(key, live)
			s.memUsed.Add(-live.sizeEstimate())
		}
		sh.mu.Unlock()
		_ = freed
		s.record(durability.OpKVDel, delPayload{Key: key})
	}
}

// selectEvictionCandidate scans every shard for the least-recently/least-
// frequently used live key. O(n) over all keys; acceptable since eviction
// only runs while over the memory ceiling, not on the hot path.
func (s *Store) selectEvictionCandidate() (key string, shardIdx uint32, sizeEstimate int64) {
	now := s.now()
	var bestScore int64 = -1
	found := false
	for idx, sh := range s.shards {
		sh.mu.RLock()
		for k, e := range sh.entries {
			if e.expired(now) {
				continue
			}
			var score int64
			switch s.eviction {
			case EvictionLFU:
				score = int64(^e.freq) // lower freq -> higher score (more evictable)
			default: // LRU
				score = -e.lastAccessNano // older access -> higher score
			}
			if !found || score > bestScore {
				bestScore = score
				key = k
				shardIdx = uint32(idx)
				sizeEstimate = e.sizeEstimate()
				found = true
			}
		}
		sh.mu.RUnlock()
	}
	return key, shardIdx, sizeEstimate
}

// lockShardsFor locks, in ascending index order, the shards backing keys.
// Returns an unlock function. Used by cross-key operations (MGET/MSET,
// transaction EXEC) so lock order never depends on argument order.
func (s *Store) lockShardsFor(keys []string, write bool) (unlock func()) {
	idxs := shardsFor(keys, s.shardCount)
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
	for _, idx := range idxs {
		if write {
			s.shards[idx].mu.Lock()
		} else {
			s.shards[idx].mu.RLock()
		}
	}
	return func() {
		for i := len(idxs) - 1; i >= 0; i-- {
			if write {
				s.shards[idxs[i]].mu.Unlock()
			} else {
				s.shards[idxs[i]].mu.RUnlock()
			}
		}
	}
}

// Exists reports whether key holds a live, unexpired value.
func (s *Store) Exists(key string) bool {
	sh := s.shardFor(key)
	now := s.now()
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := s.getLive(sh, key, now)
	return ok
}

// Kind reports the type tag of a live key, or KindNone if absent/expired.
func (s *Store) Kind(key string) Kind {
	sh := s.shardFor(key)
	now := s.now()
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := s.getLive(sh, key, now)
	if !ok {
		return KindNone
	}
	return e.kind
}

// validateValueSize rejects writes that exceed the configured max value
// size.
func (s *Store) validateValueSize(n int) error {
	if s.maxValueBytes > 0 && int64(n) > s.maxValueBytes {
		return errInvalidArgument("value exceeds max-value-bytes limit")
	}
	return nil
}
