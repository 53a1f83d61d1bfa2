package kv

import (
	"hash/fnv"
	"math"

	"github.com/hivellm/synap/internal/durability"
)

// HyperLogLog register count and precision: 2^14 registers
// gives the standard ~0.8% estimation error.
const (
	hllPrecision = 14
	hllRegisters = 1 << hllPrecision
)

func hllIndexAndRank(element string) (idx uint32, rank byte) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(element))
	sum := h.Sum64()

	idx = uint32(sum & (hllRegisters - 1))
	rest := sum >> hllPrecision
	rank = 1
	for rest&1 == 0 && rank < 64-hllPrecision {
		rest >>= 1
		rank++
	}
	return idx, rank
}

// PFAdd adds element to the HyperLogLog sketch at key, creating it if
// absent. Returns whether the estimated cardinality may have changed.
func (s *Store) PFAdd(key, element string) (changed bool, err error) {
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
		if e.kind != KindHyperLogLog {
			return false, errWrongType(key, e.kind, KindHyperLogLog)
		}
		prevSize = e.sizeEstimate()
	} else {
		e = newEntry(KindHyperLogLog)
		e.hll = make([]byte, hllRegisters)
		sh.entries[key] = e
	}

	idx, rank := hllIndexAndRank(element)
	if e.hll[idx] < rank {
		e.hll[idx] = rank
		changed = true
	}
	e.version++
	e.touch(now)
	s.adjustMemory(e.sizeEstimate() - prevSize)
	if changed {
		s.record(durability.OpHyperLogLogAdd, hllAddPayload{Key: key, Element: element})
	}
	return changed, nil
}

// PFCount estimates the cardinality of the HyperLogLog sketch at key using
// the standard bias-corrected harmonic-mean estimator.
func (s *Store) PFCount(key string) (uint64, error) {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := s.getLive(sh, key, now)
	if !ok {
		return 0, nil
	}
	if e.kind != KindHyperLogLog {
		return 0, errWrongType(key, e.kind, KindHyperLogLog)
	}

	m := float64(hllRegisters)
	sum := 0.0
	zeros := 0
	for _, r := range e.hll {
		sum += 1.0 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}
	alpha := 0.7213 / (1 + 1.079/m)
	estimate := alpha * m * m / sum

	if estimate <= 2.5*m && zeros > 0 {
		estimate = m * math.Log(m/float64(zeros))
	}
	return uint64(estimate), nil
}
