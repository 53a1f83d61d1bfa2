package kv

import "github.com/hivellm/synap/internal/durability"

// LPush/RPush prepend or append a value to the list at key, creating it if
// absent, and return the new length.
func (s *Store) push(key string, value []byte, left bool) (int, error) {
	if err := s.validateValueSize(len(value)); err != nil {
		return 0, err
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
		if e.kind != KindList {
			return 0, errWrongType(key, e.kind, KindList)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindList)
		e.list = newDeque()
		sh.entries[key] = e
	}

	v := append([]byte(nil), value...)
	if left {
		e.list.pushLeft(v)
	} else {
		e.list.pushRight(v)
	}
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpListPush, listPushPayload{Key: key, Left: left, Value: value})
	return e.list.len(), nil
}

func (s *Store) LPush(key string, value []byte) (int, error) { return s.push(key, value, true) }
func (s *Store) RPush(key string, value []byte) (int, error) { return s.push(key, value, false) }

func (s *Store) pop(key string, left bool) ([]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, errKeyNotFound(key)
	}
	if e.kind != KindList {
		return nil, errWrongType(key, e.kind, KindList)
	}
	prevSize := e.sizeEstimate()
	var v []byte
	var popped bool
	if left {
		v, popped = e.list.popLeft()
	} else {
		v, popped = e.list.popRight()
	}
	if !popped {
		return nil, errKeyNotFound(key)
	}
	if e.list.len() == 0 {
		delete(sh.entries, key)
		sh.tombstone(key, e)
	}
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpListPop, listPopPayload{Key: key, Left: left})
	return v, nil
}

func (s *Store) LPop(key string) ([]byte, error) { return s.pop(key, true) }
func (s *Store) RPop(key string) ([]byte, error) { return s.pop(key, false) }

// LLen reports the length of the list at key.
func (s *Store) LLen(key string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindList {
		return 0, errWrongType(key, e.kind, KindList)
	}
	return e.list.len(), nil
}

// LRange returns a copy of the elements in [start, stop] inclusive.
func (s *Store) LRange(key string, start, stop int) ([][]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil
	}
	if e.kind != KindList {
		return nil, errWrongType(key, e.kind, KindList)
	}
	return e.list.rangeSlice(start, stop), nil
}

// LIndex returns the element at index i (negative counts from the tail).
func (s *Store) LIndex(key string, i int) ([]byte, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, errKeyNotFound(key)
	}
	if e.kind != KindList {
		return nil, errWrongType(key, e.kind, KindList)
	}
	v, ok := e.list.at(i)
	if !ok {
		return nil, errKeyNotFound(key)
	}
	return v, nil
}
