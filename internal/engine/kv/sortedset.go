package kv

import "sort"

// sortedSet backs the SortedSet kind: a member->score map with a sorted
// view ordered by score, then lexicographically by member.
// Ranges are infrequent relative to point updates, so the sorted view is
// rebuilt lazily on read rather than maintained as a skip list.
type sortedSet struct {
	scores map[string]float64
	dirty  bool
	sorted []zmember
}

type zmember struct {
	Member string
	Score  float64
}

func newSortedSet() *sortedSet {
	return &sortedSet{scores: make(map[string]float64)}
}

func (z *sortedSet) add(member string, score float64) (isNew bool) {
	_, existed := z.scores[member]
	z.scores[member] = score
	z.dirty = true
	return !existed
}

func (z *sortedSet) remove(member string) bool {
	if _, ok := z.scores[member]; !ok {
		return false
	}
	delete(z.scores, member)
	z.dirty = true
	return true
}

func (z *sortedSet) score(member string) (float64, bool) {
	s, ok := z.scores[member]
	return s, ok
}

func (z *sortedSet) card() int { return len(z.scores) }

func (z *sortedSet) view() []zmember {
	if !z.dirty && z.sorted != nil {
		return z.sorted
	}
	out := make([]zmember, 0, len(z.scores))
	for m, s := range z.scores {
		out = append(out, zmember{Member: m, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	z.sorted = out
	z.dirty = false
	return out
}

// rangeByIndex returns members in rank order [start, stop] inclusive,
// Redis-range semantics (negative indices count from the tail).
func (z *sortedSet) rangeByIndex(start, stop int) []zmember {
	view := z.view()
	n := len(view)
	if start < 0 {
		start = n + start
	}
	if stop < 0 {
		stop = n + stop
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil
	}
	out := make([]zmember, stop-start+1)
	copy(out, view[start:stop+1])
	return out
}

func (z *sortedSet) rangeByScore(min, max float64) []zmember {
	view := z.view()
	lo := sort.Search(len(view), func(i int) bool { return view[i].Score >= min })
	var out []zmember
	for i := lo; i < len(view) && view[i].Score <= max; i++ {
		out = append(out, view[i])
	}
	return out
}

func (z *sortedSet) sizeEstimate() int64 {
	var n int64
	for m := range z.scores {
		n += int64(len(m)) + 8
	}
	return n
}
