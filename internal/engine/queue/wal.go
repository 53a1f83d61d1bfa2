package queue

import "encoding/json"

type publishPayload struct {
	Queue    string            `json:"queue"`
	ID       string            `json:"id"`
	Payload  []byte            `json:"payload"`
	Priority uint8             `json:"priority"`
	Headers  map[string]string `json:"headers,omitempty"`
}

type ackPayload struct {
	Queue string `json:"queue"`
	ID    string `json:"id"`
}

type nackPayload struct {
	Queue        string `json:"queue"`
	ID           string `json:"id"`
	DeadLettered bool   `json:"dead_lettered"`
}

type createPayload struct {
	Queue string `json:"queue"`
}

func encodePublish(queue string, msg Message) []byte {
	body, _ := json.Marshal(publishPayload{Queue: queue, ID: msg.ID, Payload: msg.Payload, Priority: msg.Priority, Headers: msg.Headers})
	return body
}

func encodeAck(queue, id string) []byte {
	body, _ := json.Marshal(ackPayload{Queue: queue, ID: id})
	return body
}

func encodeNack(queue, id string, deadLettered bool) []byte {
	body, _ := json.Marshal(nackPayload{Queue: queue, ID: id, DeadLettered: deadLettered})
	return body
}

func encodeCreate(queue string) []byte {
	body, _ := json.Marshal(createPayload{Queue: queue})
	return body
}
