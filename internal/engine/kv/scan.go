package kv

// Cursor is a monotonic bucket cursor:
// it encodes a shard index and a position within that shard's key
// enumeration. It never revisits a key deleted before the scan reached it
// and never panics on a cursor from a store with a different shard count —
// an out-of-range shard index simply ends the scan.
type Cursor struct {
	Shard uint32
	Seen  uint32 // keys already returned from the current shard
}

// Done reports whether the cursor has walked off the end of the shard
// space, i.e. the scan is complete.
func (c Cursor) Done(shardCount uint32) bool { return c.Shard >= shardCount }

// ScanResult is one page of a Scan call.
type ScanResult struct {
	Keys   []string
	Cursor Cursor
}

// ScanPageSize bounds how many keys Scan returns per call.
const ScanPageSize = 100

// Scan walks the key space one shard at a time, returning up to
// ScanPageSize keys per call along with a cursor to resume from. Matching
// keys created or deleted during a scan may or may not be observed
//, but the cursor
// itself never errors or loops.
func (s *Store) Scan(cursor Cursor) ScanResult {
	now := s.now()
	next := cursor
	var keys []string

	for next.Shard < s.shardCount && uint32(len(keys)) < ScanPageSize {
		sh := s.shards[next.Shard]
		sh.mu.RLock()

		// Snapshot this shard's live keys in a stable order so "Seen" is a
		// meaningful offset across repeated calls within the same shard.
		all := make([]string, 0, len(sh.entries))
		for k, e := range sh.entries {
			if !e.expired(now) {
				all = append(all, k)
			}
		}
		sh.mu.RUnlock()

		for i := 1; i < len(all); i++ {
			for j := i; j > 0 && all[j-1] > all[j]; j-- {
				all[j-1], all[j] = all[j], all[j-1]
			}
		}

		if int(next.Seen) >= len(all) {
			next = Cursor{Shard: next.Shard + 1, Seen: 0}
			continue
		}

		remaining := ScanPageSize - uint32(len(keys))
		end := next.Seen + remaining
		if end > uint32(len(all)) {
			end = uint32(len(all))
		}
		keys = append(keys, all[next.Seen:end]...)
		next.Seen = end

		if next.Seen >= uint32(len(all)) {
			next = Cursor{Shard: next.Shard + 1, Seen: 0}
		}
	}

	return ScanResult{Keys: keys, Cursor: next}
}
