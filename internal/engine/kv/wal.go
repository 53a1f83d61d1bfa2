package kv

import (
	"encoding/json"

	"github.com/hivellm/synap/internal/durability"
)

// Wire payloads for each KV-family WAL op tag. JSON keeps the
// record bodies self-describing and easy to evolve.

type setPayload struct {
	Key      string `json:"key"`
	Value    []byte `json:"value"`
	ExpireAt int64  `json:"expire_at,omitempty"`
}

type delPayload struct {
	Key     string `json:"key"`
	Expired bool   `json:"expired,omitempty"`
}

type ttlPayload struct {
	Key      string `json:"key"`
	ExpireAt int64  `json:"expire_at"`
}

type hashFieldPayload struct {
	Key   string `json:"key"`
	Field string `json:"field"`
	Value []byte `json:"value,omitempty"`
}

type listPushPayload struct {
	Key   string `json:"key"`
	Left  bool   `json:"left"`
	Value []byte `json:"value"`
}

type listPopPayload struct {
	Key  string `json:"key"`
	Left bool   `json:"left"`
}

type memberPayload struct {
	Key    string `json:"key"`
	Member string `json:"member"`
}

type zsetPayload struct {
	Key    string  `json:"key"`
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

type bitSetPayload struct {
	Key    string `json:"key"`
	Offset int64  `json:"offset"`
	Bit    byte   `json:"bit"`
}

type hllAddPayload struct {
	Key     string `json:"key"`
	Element string `json:"element"`
}

func (s *Store) record(tag durability.OpTag, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		return // malformed payloads cannot happen for well-typed v; best-effort
	}
	_ = s.recorder.Submit(tag, body)
}
