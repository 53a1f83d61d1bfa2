package kv

import (
	"container/heap"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is the recommended shard count. It need not be a hard
// constant: any power of two works, and the tests run with 4 and 16 shards.
const DefaultShardCount = 256

// shard owns one partition of the key space: its own key map, its own
// expiry heap, and its own lock.
type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
	expiry  expiryHeap

	// tombstones records the version a key held at the moment it was
	// deleted or expired, so WATCH can still detect that a watched key
	// changed even after it's gone. Without this, a key's version would
	// read back as 0 once removed, indistinguishable from a key that
	// never existed.
	tombstones map[string]uint64
}

func newShard() *shard {
	return &shard{entries: make(map[string]*entry)}
}

// tombstone records e's version under key so a later version lookup still
// observes it once e is removed from entries. Caller must hold s.mu for
// writing and must remove the entry from s.entries itself.
func (s *shard) tombstone(key string, e *entry) {
	if s.tombstones == nil {
		s.tombstones = make(map[string]uint64)
	}
	s.tombstones[key] = e.version
}

// versionLocked returns key's version counter: the live entry's version if
// key is live, the version recorded at its last deletion/expiry otherwise,
// or 0 if the key has never existed. Caller must hold s.mu for at least
// reading.
func (s *shard) versionLocked(key string, now time.Time) uint64 {
	if e, ok := s.entries[key]; ok {
		// An expired entry not yet reaped holds the version the sweep will
		// tombstone, so it reads back the same before and after the sweep.
		return e.version
	}
	return s.tombstones[key]
}

// shardIndex hashes a key to a shard using murmur3, a fast non-cryptographic
// hash well suited to shard selection.
func shardIndex(key string, shardCount uint32) uint32 {
	return murmur3.Sum32([]byte(key)) % shardCount
}

// shardsFor returns the unique shard indices for a set of keys in ascending
// order, so callers can lock shards in a deterministic order and avoid
// deadlock on cross-shard operations.
func shardsFor(keys []string, shardCount uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(keys))
	for _, k := range keys {
		seen[shardIndex(k, shardCount)] = struct{}{}
	}
	out := make([]uint32, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	// Simple insertion sort: len(keys) is small in practice (MGET/MSET argv).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// expiryItem is one entry in a shard's min-heap of (key, expireAt) pairs.
type expiryItem struct {
	key      string
	expireAt int64
	index    int
}

type expiryHeap []*expiryItem

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].expireAt < h[j].expireAt }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *expiryHeap) Push(x interface{}) {
	item := x.(*expiryItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// scheduleExpiry pushes a new heap entry. Stale entries for a key (from a
// prior TTL that was overwritten) are left in the heap and discarded lazily
// when popped, since the live entry's expireAt is the source of truth.
func (s *shard) scheduleExpiry(key string, expireAt int64) {
	heap.Push(&s.expiry, &expiryItem{key: key, expireAt: expireAt})
}

// popExpiredLocked removes and returns keys whose scheduled expiry has
// elapsed as of now, validating against the live entry to ignore stale heap
// entries. Caller must hold s.mu for writing.
func (s *shard) popExpiredLocked(nowNano int64) []string {
	var expired []string
	for s.expiry.Len() > 0 {
		top := s.expiry[0]
		if top.expireAt > nowNano {
			break
		}
		heap.Pop(&s.expiry)
		live, ok := s.entries[top.key]
		if !ok || live.expireAt != top.expireAt {
			continue // stale heap entry, key was deleted/overwritten since
		}
		delete(s.entries, top.key)
		s.tombstone(top.key, live)
		expired = append(expired, top.key)
	}
	return expired
}

func (s *shard) nextExpiryLocked() (int64, bool) {
	for s.expiry.Len() > 0 {
		top := s.expiry[0]
		live, ok := s.entries[top.key]
		if !ok || live.expireAt != top.expireAt {
			heap.Pop(&s.expiry)
			continue
		}
		return top.expireAt, true
	}
	return 0, false
}
