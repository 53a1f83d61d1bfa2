package kv

import (
	"strconv"
	"time"

	"github.com/hivellm/synap/internal/durability"
)

// TxnOpKind discriminates the operations the optimistic transaction
// coordinator can queue. Scoped to the String/Hash operations that make up
// the common WATCH/MULTI/EXEC surface; collection
// operations beyond these go through the regular, non-transactional API.
type TxnOpKind uint8

const (
	TxnSet TxnOpKind = iota
	TxnDel
	TxnIncr
	TxnHSet
)

// TxnOp is one queued operation within a transaction.
type TxnOp struct {
	Kind  TxnOpKind
	Key   string
	Value []byte
	Delta int64
	Field string // TxnHSet only
}

// TxnResult is the per-op outcome of a successful EXEC.
type TxnResult struct {
	Value []byte
	Int   int64
}

// Version returns key's version counter, used by WATCH to record a
// baseline: the live entry's version if key exists, the version it held at
// its last deletion/expiry if it was since removed, or 0 if it has never
// existed.
func (s *Store) Version(key string) uint64 {
	sh := s.shardFor(key)
	now := s.now()

	sh.mu.RLock()
	defer sh.mu.RUnlock()

	return sh.versionLocked(key, now)
}

// ExecTxn locks every shard touched by watchedKeys or ops (ascending index
// order, to avoid deadlock against concurrent transactions), verifies every
// watched key's version still matches expected, and only then applies the
// queued ops — all under the same lock span, so no writer can interleave
// between the version check and the apply.
func (s *Store) ExecTxn(watchedKeys []string, expected map[string]uint64, ops []TxnOp) (results []TxnResult, aborted bool, err error) {
	keys := append([]string(nil), watchedKeys...)
	for _, op := range ops {
		keys = append(keys, op.Key)
	}

	unlock := s.lockShardsFor(keys, true)
	defer unlock()

	now := s.now()
	for key, wantVersion := range expected {
		sh := s.shardFor(key)
		if sh.versionLocked(key, now) != wantVersion {
			return nil, true, nil
		}
	}

	results = make([]TxnResult, len(ops))
	for i, op := range ops {
		res, opErr := s.applyTxnOpLocked(op, now)
		if opErr != nil {
			return nil, false, opErr
		}
		results[i] = res
	}
	return results, false, nil
}

// applyTxnOpLocked runs one op's logic assuming its shard's lock is already
// held by the caller (ExecTxn).
func (s *Store) applyTxnOpLocked(op TxnOp, now time.Time) (TxnResult, error) {
	sh := s.shardFor(op.Key)

	switch op.Kind {
	case TxnSet:
		var prevSize int64
		var prevVersion uint64
		if live, ok := sh.entries[op.Key]; ok {
			prevSize = live.sizeEstimate()
			prevVersion = live.version
		}
		e := newEntry(KindString)
		e.str = append([]byte(nil), op.Value...)
		e.version = prevVersion + 1
		e.touch(now)
		sh.entries[op.Key] = e
		s.adjustMemory(e.sizeEstimate() - prevSize)
		s.record(durability.OpKVSet, setPayload{Key: op.Key, Value: op.Value})
		return TxnResult{}, nil

	case TxnDel:
		e, ok := sh.entries[op.Key]
		if !ok {
			return TxnResult{}, nil
		}
		delete(sh.entries, op.Key)
		sh.tombstone(op.Key, e)
		s.adjustMemory(-e.sizeEstimate())
		s.record(durability.OpKVDel, delPayload{Key: op.Key})
		return TxnResult{}, nil

	case TxnIncr:
		e, ok := sh.entries[op.Key]
		var cur int64
		var prevSize int64
		if ok {
			if e.kind != KindString {
				return TxnResult{}, errWrongType(op.Key, e.kind, KindString)
			}
			prevSize = e.sizeEstimate()
			parsed, perr := strconv.ParseInt(string(e.str), 10, 64)
			if perr != nil {
				return TxnResult{}, errInvalidArgument("value is not an integer")
			}
			cur = parsed
		} else {
			e = newEntry(KindString)
			sh.entries[op.Key] = e
		}
		next := cur + op.Delta
		e.str = []byte(strconv.FormatInt(next, 10))
		e.version++
		e.touch(now)
		s.adjustMemory(e.sizeEstimate() - prevSize)
		s.record(durability.OpKVSet, setPayload{Key: op.Key, Value: e.str})
		return TxnResult{Int: next}, nil

	case TxnHSet:
		e, ok := sh.entries[op.Key]
		var prevSize int64
		if ok {
			if e.kind != KindHash {
				return TxnResult{}, errWrongType(op.Key, e.kind, KindHash)
			}
			prevSize = e.sizeEstimate()
		} else {
			e = newEntry(KindHash)
			e.hash = newOrderedHash()
			sh.entries[op.Key] = e
		}
		e.hash.set(op.Field, append([]byte(nil), op.Value...))
		e.version++
		e.touch(now)
		s.adjustMemory(e.sizeEstimate() - prevSize)
		s.record(durability.OpHashSet, hashFieldPayload{Key: op.Key, Field: op.Field, Value: op.Value})
		return TxnResult{}, nil
	}
	return TxnResult{}, errInvalidArgument("unknown transaction op kind")
}
