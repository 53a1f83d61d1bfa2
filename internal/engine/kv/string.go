package kv

import (
	"strconv"

	"github.com/hivellm/synap/internal/durability"
)

// SetOptions carries the optional modifiers of the String-Set operation:
// conditional existence checks and a TTL.
type SetOptions struct {
	TTL     int64 // nanoseconds; 0 means no expiry
	OnlyIfNotExists bool
	OnlyIfExists    bool
}

// Set stores key as a string value, replacing whatever was there before
// regardless of its prior kind.
func (s *Store) Set(key string, value []byte, opts SetOptions) (stored bool, err error) {
	if err := s.validateValueSize(len(value)); err != nil {
		return false, err
	}
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	live, exists := s.getLive(sh, key, now)
	if opts.OnlyIfNotExists && exists {
		return false, nil
	}
	if opts.OnlyIfExists && !exists {
		return false, nil
	}

	var prevSize int64
	if live != nil {
		prevSize = live.sizeEstimate()
	}

	e := newEntry(KindString)
	e.str = append([]byte(nil), value...)
	e.version = 1
	if live != nil {
		e.version = live.version + 1
	}
	var expireAt int64
	if opts.TTL > 0 {
		expireAt = now.UnixNano() + opts.TTL
		e.expireAt = expireAt
		sh.scheduleExpiry(key, expireAt)
	}
	e.touch(now)
	sh.entries[key] = e

	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpKVSet, setPayload{Key: key, Value: value, ExpireAt: expireAt})
	return true, nil
}

// Get returns the string value at key.
func (s *Store) Get(key string) ([]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, errKeyNotFound(key)
	}
	if e.kind != KindString {
		return nil, errWrongType(key, e.kind, KindString)
	}
	e.touch(now)
	return append([]byte(nil), e.str...), nil
}

// Del deletes one or more keys regardless of kind, returning the count
// actually removed.
func (s *Store) Del(keys ...string) int {
	unlock := s.lockShardsFor(keys, true)
	defer unlock()

	now := s.now()
	removed := 0
	for _, key := range keys {
		sh := s.shardFor(key)
		e, ok := sh.entries[key]
		if !ok || e.expired(now) {
			continue
		}
		delete(sh.entries, key)
		sh.tombstone(key, e)
		s.adjustMemory(-e.sizeEstimate())
		s.record(durability.OpKVDel, delPayload{Key: key})
		removed++
	}
	return removed
}

// Expire sets a TTL (in nanoseconds from now) on an existing key.
func (s *Store) Expire(key string, ttl int64) (bool, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return false, nil
	}
	expireAt := now.UnixNano() + ttl
	e.expireAt = expireAt
	sh.scheduleExpiry(key, expireAt)
	s.record(durability.OpKVTTL, ttlPayload{Key: key, ExpireAt: expireAt})
	return true, nil
}

// Persist removes any TTL from key, returning whether one was removed.
func (s *Store) Persist(key string) bool {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok || e.expireAt == 0 {
		return false
	}
	e.expireAt = 0
	s.record(durability.OpKVTTL, ttlPayload{Key: key, ExpireAt: 0})
	return true
}

// TTL returns the remaining time-to-live in nanoseconds, -1 if the key has
// no expiry, or an error if the key does not exist.
func (s *Store) TTL(key string) (int64, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, errKeyNotFound(key)
	}
	if e.expireAt == 0 {
		return -1, nil
	}
	remaining := e.expireAt - now.UnixNano()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Incr adds delta to the integer value at key, creating it at 0 first if
// absent. Returns domain.ErrWrongType if the existing value isn't a string,
// and domain.ErrInvalidArgument if it is a string but not a base-10 integer.
func (s *Store) Incr(key string, delta int64) (int64, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	var cur int64
	var prevSize int64
	if ok {
		if e.kind != KindString {
			return 0, errWrongType(key, e.kind, KindString)
		}
		prevSize = e.sizeEstimate()
		parsed, perr := strconv.ParseInt(string(e.str), 10, 64)
		if perr != nil {
			return 0, errInvalidArgument("value is not an integer")
		}
		cur = parsed
	} else {
		e = newEntry(KindString)
		sh.entries[key] = e
	}

	next := cur + delta
	e.str = []byte(strconv.FormatInt(next, 10))
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpKVSet, setPayload{Key: key, Value: e.str, ExpireAt: e.expireAt})
	return next, nil
}

// MGet fetches several string keys atomically with respect to concurrent
// writers,
// locking all backing shards in ascending index order.
func (s *Store) MGet(keys []string) ([][]byte, error) {
	unlock := s.lockShardsFor(keys, false)
	defer unlock()

	now := s.now()
	out := make([][]byte, len(keys))
	for i, key := range keys {
		sh := s.shardFor(key)
		e, ok := sh.entries[key]
		if !ok || e.expired(now) {
			continue
		}
		if e.kind != KindString {
			return nil, errWrongType(key, e.kind, KindString)
		}
		out[i] = append([]byte(nil), e.str...)
	}
	return out, nil
}

// MSet atomically stores every key/value pair, locking all backing shards
// up front so no reader observes a partial write.
func (s *Store) MSet(pairs map[string][]byte) error {
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	for _, v := range pairs {
		if err := s.validateValueSize(len(v)); err != nil {
			return err
		}
	}

	unlock := s.lockShardsFor(keys, true)
	defer unlock()

	now := s.now()
	for key, value := range pairs {
		sh := s.shardFor(key)
		var prevSize int64
		if live, ok := sh.entries[key]; ok {
			prevSize = live.sizeEstimate()
		}
		e := newEntry(KindString)
		e.str = append([]byte(nil), value...)
		e.touch(now)
		sh.entries[key] = e
		s.adjustMemory(e.sizeEstimate() - prevSize)
		s.record(durability.OpKVSet, setPayload{Key: key, Value: value})
	}
	return nil
}
