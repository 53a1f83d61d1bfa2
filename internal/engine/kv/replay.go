package kv

import (
	"encoding/json"

	"github.com/hivellm/synap/internal/durability"
)

// Apply replays one durable record against the store. It is used only
// during WAL recovery, against a store whose Recorder is durability.NopRecorder
// so replay never re-logs what it is replaying.
//
// Absolute TTLs (ExpireAt) are converted back to a relative TTL against the
// store's current clock: a key whose deadline has already passed by replay
// time is not resurrected.
func (s *Store) Apply(tag durability.OpTag, payload []byte) error {
	now := s.now().UnixNano()

	switch tag {
	case durability.OpKVSet:
		var p setPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		ttl, expired := relativeTTL(p.ExpireAt, now)
		if expired {
			s.Del(p.Key)
			return nil
		}
		_, err := s.Set(p.Key, p.Value, SetOptions{TTL: ttl})
		return err

	case durability.OpKVDel:
		var p delPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		s.Del(p.Key)
		return nil

	case durability.OpKVTTL:
		var p ttlPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		if p.ExpireAt == 0 {
			s.Persist(p.Key)
			return nil
		}
		ttl, expired := relativeTTL(p.ExpireAt, now)
		if expired {
			s.Del(p.Key)
			return nil
		}
		_, err := s.Expire(p.Key, ttl)
		return err

	case durability.OpHashSet:
		var p hashFieldPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.HSet(p.Key, p.Field, p.Value)
		return err

	case durability.OpHashDel:
		var p hashFieldPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.HDel(p.Key, p.Field)
		return err

	case durability.OpListPush:
		var p listPushPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		var err error
		if p.Left {
			_, err = s.LPush(p.Key, p.Value)
		} else {
			_, err = s.RPush(p.Key, p.Value)
		}
		return err

	case durability.OpListPop:
		var p listPopPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		var err error
		if p.Left {
			_, err = s.LPop(p.Key)
		} else {
			_, err = s.RPop(p.Key)
		}
		return err

	case durability.OpSetAdd:
		var p memberPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.SAdd(p.Key, p.Member)
		return err

	case durability.OpSetRem:
		var p memberPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.SRem(p.Key, p.Member)
		return err

	case durability.OpSortedSetAdd:
		var p zsetPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.ZAdd(p.Key, p.Member, p.Score)
		return err

	case durability.OpSortedSetRem:
		var p memberPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.ZRem(p.Key, p.Member)
		return err

	case durability.OpBitmapSet:
		var p bitSetPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.SetBit(p.Key, p.Offset, p.Bit)
		return err

	case durability.OpHyperLogLogAdd:
		var p hllAddPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		_, err := s.PFAdd(p.Key, p.Element)
		return err

	default:
		return nil // not a kv-family tag; the engine dispatcher routes elsewhere
	}
}

// relativeTTL converts an absolute expireAt (unix nanos, 0 = none) to a TTL
// relative to now, reporting expired=true if the deadline has already
// passed.
func relativeTTL(expireAt, now int64) (ttl int64, expired bool) {
	if expireAt == 0 {
		return 0, false
	}
	remaining := expireAt - now
	if remaining <= 0 {
		return 0, true
	}
	return remaining, false
}
