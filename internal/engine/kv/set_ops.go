package kv

import "github.com/hivellm/synap/internal/durability"

// SAdd adds members to the set at key, creating it if absent, and returns
// how many were newly added.
func (s *Store) SAdd(key string, members ...string) (int, error) {
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
		if e.kind != KindSet {
			return 0, errWrongType(key, e.kind, KindSet)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindSet)
		e.set = make(map[string]struct{})
		sh.entries[key] = e
	}

	added := 0
	for _, m := range members {
		if _, exists := e.set[m]; !exists {
			e.set[m] = struct{}{}
			added++
			s.record(durability.OpSetAdd, memberPayload{Key: key, Member: m})
		}
	}
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	return added, nil
}

// SRem removes members from the set at key, returning how many existed.
func (s *Store) SRem(key string, members ...string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindSet {
		return 0, errWrongType(key, e.kind, KindSet)
	}
	prevSize := e.sizeEstimate()
	removed := 0
	for _, m := range members {
		if _, exists := e.set[m]; exists {
			delete(e.set, m)
			removed++
			s.record(durability.OpSetRem, memberPayload{Key: key, Member: m})
		}
	}
	if len(e.set) == 0 {
		delete(sh.entries, key)
		sh.tombstone(key, e)
	}
	s.adjustMemory(e.sizeEstimate() - prevSize)
	return removed, nil
}

// SIsMember reports whether member belongs to the set at key.
func (s *Store) SIsMember(key, member string) (bool, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return false, nil
	}
	if e.kind != KindSet {
		return false, errWrongType(key, e.kind, KindSet)
	}
	_, isMember := e.set[member]
	return isMember, nil
}

// SMembers returns every member of the set at key, order unspecified.
func (s *Store) SMembers(key string) ([]string, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil
	}
	if e.kind != KindSet {
		return nil, errWrongType(key, e.kind, KindSet)
	}
	out := make([]string, 0, len(e.set))
	for m := range e.set {
		out = append(out, m)
	}
	return out, nil
}

// SCard reports the cardinality of the set at key.
func (s *Store) SCard(key string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindSet {
		return 0, errWrongType(key, e.kind, KindSet)
	}
	return len(e.set), nil
}

// SInter computes the intersection of the sets at the given keys, locking
// all backing shards up front for a consistent view.
func (s *Store) SInter(keys ...string) ([]string, error) {
	unlock := s.lockShardsFor(keys, false)
	defer unlock()

	now := s.now()
	var sets []map[string]struct{}
	for _, key := range keys {
		sh := s.shardFor(key)
		e, ok := sh.entries[key]
		if !ok || e.expired(now) {
			return nil, nil // empty set intersected with anything is empty
		}
		if e.kind != KindSet {
			return nil, errWrongType(key, e.kind, KindSet)
		}
		sets = append(sets, e.set)
	}
	if len(sets) == 0 {
		return nil, nil
	}
	smallest := sets[0]
	for _, set := range sets[1:] {
		if len(set) < len(smallest) {
			smallest = set
		}
	}
	var out []string
	for m := range smallest {
		inAll := true
		for _, set := range sets {
			if _, ok := set[m]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, m)
		}
	}
	return out, nil
}
