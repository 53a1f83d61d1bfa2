package stream

import "encoding/json"

type publishPayload struct {
	Room       string `json:"room"`
	Offset     uint64 `json:"offset"`
	Type       string `json:"type"`
	Data       []byte `json:"data"`
	ProducerID string `json:"producer_id,omitempty"`
}

type createPayload struct {
	Room string `json:"room"`
}

func encodePublish(room string, ev Event) []byte {
	body, _ := json.Marshal(publishPayload{Room: room, Offset: ev.Offset, Type: ev.Type, Data: ev.Data, ProducerID: ev.ProducerID})
	return body
}

func encodeCreate(room string) []byte {
	body, _ := json.Marshal(createPayload{Room: room})
	return body
}
