package kv

import "github.com/hivellm/synap/internal/durability"

// ZAdd sets member's score in the sorted set at key, creating it if absent.
func (s *Store) ZAdd(key, member string, score float64) (isNew bool, err error) {
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
		if e.kind != KindSortedSet {
			return false, errWrongType(key, e.kind, KindSortedSet)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindSortedSet)
		e.zset = newSortedSet()
		sh.entries[key] = e
	}

	isNew = e.zset.add(member, score)
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	s.record(durability.OpSortedSetAdd, zsetPayload{Key: key, Member: member, Score: score})
	return isNew, nil
}

// ZRem removes member from the sorted set at key.
func (s *Store) ZRem(key, member string) (bool, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return false, nil
	}
	if e.kind != KindSortedSet {
		return false, errWrongType(key, e.kind, KindSortedSet)
	}
	prevSize := e.sizeEstimate()
	removed := e.zset.remove(member)
	if removed {
		s.record(durability.OpSortedSetRem, memberPayload{Key: key, Member: member})
	}
	if e.zset.card() == 0 {
		delete(sh.entries, key)
		sh.tombstone(key, e)
	}
	s.adjustMemory(e.sizeEstimate() - prevSize)
	return removed, nil
}

// ZScore returns the score of member in the sorted set at key.
func (s *Store) ZScore(key, member string) (float64, bool, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, false, nil
	}
	if e.kind != KindSortedSet {
		return 0, false, errWrongType(key, e.kind, KindSortedSet)
	}
	score, found := e.zset.score(member)
	return score, found, nil
}

// ZCard reports the cardinality of the sorted set at key.
func (s *Store) ZCard(key string) (int, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindSortedSet {
		return 0, errWrongType(key, e.kind, KindSortedSet)
	}
	return e.zset.card(), nil
}

// ZRange returns members in rank order over [start, stop] inclusive.
func (s *Store) ZRange(key string, start, stop int) ([]string, []float64, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil, nil
	}
	if e.kind != KindSortedSet {
		return nil, nil, errWrongType(key, e.kind, KindSortedSet)
	}
	view := e.zset.rangeByIndex(start, stop)
	members := make([]string, len(view))
	scores := make([]float64, len(view))
	for i, m := range view {
		members[i] = m.Member
		scores[i] = m.Score
	}
	return members, scores, nil
}

// ZRangeByScore returns members with score in [min, max], ascending.
func (s *Store) ZRangeByScore(key string, min, max float64) ([]string, []float64, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return nil, nil, nil
	}
	if e.kind != KindSortedSet {
		return nil, nil, errWrongType(key, e.kind, KindSortedSet)
	}
	view := e.zset.rangeByScore(min, max)
	members := make([]string, len(view))
	scores := make([]float64, len(view))
	for i, m := range view {
		members[i] = m.Member
		scores[i] = m.Score
	}
	return members, scores, nil
}
