package kv

import "github.com/hivellm/synap/internal/durability"

// HSet sets a field in the hash at key, creating the hash if absent.
func (s *Store) HSet(key, field string, value []byte) (isNew bool, err error) {
	if err := s.validateValueSize(len(value)); err != nil {
		return false, err
	}
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if ok && e.expired(now) {
		ok = false
	}
	var prevSize int64
	if ok {
		if e.kind != KindHash {
			return false, errWrongType(key, e.kind, KindHash)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindHash)
		e.hash = newOrderedHash()
		sh.entries[key] = e
	}

	isNew = e.hash.set(field, append([]byte(nil), value...))
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpHashSet, hashFieldPayload{Key: key, Field: field, Value: value})
	return isNew, nil
}

// HGet reads a single field from the hash at key.
func (s *Store) HGet(key, field string) ([]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, errKeyNotFound(key)
	}
	if e.kind != KindHash {
		return nil, errWrongType(key, e.kind, KindHash)
	}
	v, ok := e.hash.fields[field]
	if !ok {
		return nil, errKeyNotFound(key + "." + field)
	}
	return append([]byte(nil), v...), nil
}

// HGetAll returns every field/value pair in the hash, in insertion order.
func (s *Store) HGetAll(key string) ([]string, [][]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil, nil
	}
	if e.kind != KindHash {
		return nil, nil, errWrongType(key, e.kind, KindHash)
	}
	fields := make([]string, len(e.hash.order))
	values := make([][]byte, len(e.hash.order))
	copy(fields, e.hash.order)
	for i, f := range e.hash.order {
		values[i] = append([]byte(nil), e.hash.fields[f]...)
	}
	return fields, values, nil
}

// HDel removes one or more fields from the hash, returning how many existed.
func (s *Store) HDel(key string, fields ...string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindHash {
		return 0, errWrongType(key, e.kind, KindHash)
	}
	prevSize := e.sizeEstimate()
	removed := 0
	for _, f := range fields {
		if e.hash.del(f) {
			removed++
			s.record(durability.OpHashDel, hashFieldPayload{Key: key, Field: f})
		}
	}
	if e.hash.len() == 0 {
		delete(sh.entries, key)
		sh.tombstone(key, e)
	}
	s.adjustMemory(e.sizeEstimate() - prevSize)
	return removed, nil
}

// HLen reports the field count of the hash at key.
func (s *Store) HLen(key string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindHash {
		return 0, errWrongType(key, e.kind, KindHash)
	}
	return e.hash.len(), nil
}
