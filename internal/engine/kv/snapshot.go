package kv

// SnapshotEntry is the serializable form of one key, used by the durability
// engine's snapshot writer. It carries every value kind in one shape so the
// snapshot body's encoding doesn't need a variant per kind.
type SnapshotEntry struct {
	Key       string            `json:"key"`
	Kind      Kind              `json:"kind"`
	ExpireAt  int64             `json:"expire_at,omitempty"`
	Str       []byte            `json:"str,omitempty"`
	HashKeys  []string          `json:"hash_keys,omitempty"`
	HashVals  [][]byte          `json:"hash_vals,omitempty"`
	List      [][]byte          `json:"list,omitempty"`
	Set       []string          `json:"set,omitempty"`
	ZMembers  []string          `json:"zmembers,omitempty"`
	ZScores   []float64         `json:"zscores,omitempty"`
	HLL       []byte            `json:"hll,omitempty"`
	Bitmap    []byte            `json:"bitmap,omitempty"`
	Version   uint64            `json:"version"`
}

// Export snapshots every live key across all shards for persistence. It
// takes each shard's read lock in turn, never all at once, so a snapshot
// in progress does not stall the whole keyspace.
func (s *Store) Export() []SnapshotEntry {
	now := s.now()
	var out []SnapshotEntry
	for _, sh := range s.shards {
		sh.mu.RLock()
		for key, e := range sh.entries {
			if e.expired(now) {
				continue
			}
			out = append(out, exportEntry(key, e))
		}
		sh.mu.RUnlock()
	}
	return out
}

func exportEntry(key string, e *entry) SnapshotEntry {
	se := SnapshotEntry{Key: key, Kind: e.kind, ExpireAt: e.expireAt, Version: e.version}
	switch e.kind {
	case KindString:
		se.Str = append([]byte(nil), e.str...)
	case KindHash:
		se.HashKeys = append([]string(nil), e.hash.order...)
		se.HashVals = make([][]byte, len(se.HashKeys))
		for i, f := range se.HashKeys {
			se.HashVals[i] = e.hash.fields[f]
		}
	case KindList:
		se.List = append([][]byte(nil), e.list.items...)
	case KindSet:
		se.Set = make([]string, 0, len(e.set))
		for m := range e.set {
			se.Set = append(se.Set, m)
		}
	case KindSortedSet, KindGeo:
		for m, score := range e.zset.scores {
			se.ZMembers = append(se.ZMembers, m)
			se.ZScores = append(se.ZScores, score)
		}
	case KindHyperLogLog:
		se.HLL = append([]byte(nil), e.hll...)
	case KindBitmap:
		se.Bitmap = append([]byte(nil), e.bmap...)
	}
	return se
}

// Import restores a set of previously exported entries, overwriting
// whatever the store currently holds for each key. Used at startup to
// replay the latest snapshot before the WAL tail.
func (s *Store) Import(entries []SnapshotEntry) {
	for _, se := range entries {
		sh := s.shardFor(se.Key)
		sh.mu.Lock()
		e := newEntry(se.Kind)
		e.expireAt = se.ExpireAt
		e.version = se.Version
		switch se.Kind {
		case KindString:
			e.str = se.Str
		case KindHash:
			e.hash = newOrderedHash()
			for i, f := range se.HashKeys {
				e.hash.set(f, se.HashVals[i])
			}
		case KindList:
			e.list = &deque{items: se.List}
		case KindSet:
			e.set = make(map[string]struct{}, len(se.Set))
			for _, m := range se.Set {
				e.set[m] = struct{}{}
			}
		case KindSortedSet, KindGeo:
			e.zset = newSortedSet()
			for i, m := range se.ZMembers {
				e.zset.add(m, se.ZScores[i])
			}
		case KindHyperLogLog:
			e.hll = se.HLL
		case KindBitmap:
			e.bmap = se.Bitmap
		}
		sh.entries[se.Key] = e
		if e.expireAt != 0 {
			sh.scheduleExpiry(se.Key, e.expireAt)
		}
		sh.mu.Unlock()
		s.adjustMemory(e.sizeEstimate())
	}
}
