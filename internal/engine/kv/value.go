// Package kv implements Synap's sharded in-memory KV engine.
//
// The value variant is a closed tagged sum over eight kinds: a single mistyped operation
// returns domain.ErrWrongType rather than silently coercing.
package kv

import (
	"time"
)

// Kind tags the variant held by an entry. First write defines a key's kind;
// only deletion (or overwrite via Set) transitions between kinds.
type Kind uint8

const (
	KindNone Kind = iota
	KindString
	KindHash
	KindList
	KindSet
	KindSortedSet
	KindHyperLogLog
	KindBitmap
	KindGeo
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindHash:
		return "hash"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindSortedSet:
		return "zset"
	case KindHyperLogLog:
		return "hyperloglog"
	case KindBitmap:
		return "bitmap"
	case KindGeo:
		return "geo"
	default:
		return "none"
	}
}

// orderedHash preserves insertion order for hash field iteration — a plain
// map cannot give that, so the hash keeps a parallel order slice alongside
// the value map.
type orderedHash struct {
	order  []string
	fields map[string][]byte
}

func newOrderedHash() *orderedHash {
	return &orderedHash{fields: make(map[string][]byte)}
}

func (h *orderedHash) set(field string, val []byte) (isNew bool) {
	if _, ok := h.fields[field]; !ok {
		h.order = append(h.order, field)
		isNew = true
	}
	h.fields[field] = val
	return isNew
}

func (h *orderedHash) del(field string) bool {
	if _, ok := h.fields[field]; !ok {
		return false
	}
	delete(h.fields, field)
	for i, f := range h.order {
		if f == field {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

func (h *orderedHash) len() int { return len(h.fields) }

// entry is the storage cell behind one key: tag, payload, TTL, and the
// LRU/LFU metadata eviction needs.
type entry struct {
	kind Kind

	str  []byte
	hash *orderedHash
	list *deque
	set  map[string]struct{}
	zset *sortedSet
	hll  []byte // 2^14 registers, one byte each, default precision
	bmap []byte

	expireAt int64 // unix nanos; 0 means no TTL
	version  uint64

	lastAccessNano int64
	freq           uint32
}

func newEntry(kind Kind) *entry {
	return &entry{kind: kind}
}

// sizeEstimate returns an approximate memory footprint in bytes, used by
// the eviction selector.
func (e *entry) sizeEstimate() int64 {
	const overhead = 64
	switch e.kind {
	case KindString:
		return overhead + int64(len(e.str))
	case KindHash:
		var n int64
		for k, v := range e.hash.fields {
			n += int64(len(k) + len(v))
		}
		return overhead + n
	case KindList:
		return overhead + e.list.sizeEstimate()
	case KindSet:
		var n int64
		for m := range e.set {
			n += int64(len(m))
		}
		return overhead + n
	case KindSortedSet:
		return overhead + e.zset.sizeEstimate()
	case KindHyperLogLog:
		return overhead + int64(len(e.hll))
	case KindBitmap:
		return overhead + int64(len(e.bmap))
	case KindGeo:
		return overhead + e.zset.sizeEstimate()
	default:
		return overhead
	}
}

func (e *entry) touch(now time.Time) {
	e.lastAccessNano = now.UnixNano()
	e.freq++
}

func (e *entry) expired(now time.Time) bool {
	return e.expireAt != 0 && e.expireAt <= now.UnixNano()
}
