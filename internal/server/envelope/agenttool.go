package envelope

// ToolSchema describes one envelope command as an AI-agent tool definition:
// name, description, and the JSON Schema of its payload, in the shape most
// agent-tool runtimes expect.
type ToolSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func schema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func strProp(desc string) map[string]any  { return map[string]any{"type": "string", "description": desc} }
func numProp(desc string) map[string]any  { return map[string]any{"type": "number", "description": desc} }
func boolProp(desc string) map[string]any { return map[string]any{"type": "boolean", "description": desc} }

// Tools lists every dispatchable command as a tool schema. Generated once
// per caller rather than cached: the list is a handful of static literals,
// cheap to rebuild, and this keeps it trivially free of shared mutable state.
func Tools() []ToolSchema {
	return []ToolSchema{
		{
			Name:        "kv.get",
			Description: "Read the value stored at key.",
			Parameters:  schema([]string{"key"}, map[string]any{"key": strProp("key to read")}),
		},
		{
			Name:        "kv.set",
			Description: "Store value at key, optionally with a TTL in seconds.",
			Parameters: schema([]string{"key", "value"}, map[string]any{
				"key":         strProp("key to write"),
				"value":       strProp("value to store"),
				"ttl_seconds": numProp("optional expiry in seconds"),
			}),
		},
		{
			Name:        "kv.del",
			Description: "Delete the value stored at key.",
			Parameters:  schema([]string{"key"}, map[string]any{"key": strProp("key to delete")}),
		},
		{
			Name:        "kv.expire",
			Description: "Set or refresh a key's time-to-live.",
			Parameters: schema([]string{"key", "ttl_seconds"}, map[string]any{
				"key":         strProp("key to expire"),
				"ttl_seconds": numProp("seconds until expiry"),
			}),
		},
		{
			Name:        "queue.publish",
			Description: "Publish a message onto a named queue.",
			Parameters: schema([]string{"queue", "payload"}, map[string]any{
				"queue":    strProp("queue name"),
				"payload":  strProp("message body"),
				"priority": numProp("delivery priority, higher first"),
			}),
		},
		{
			Name:        "queue.consume",
			Description: "Pop the next ready message from a queue for a consumer.",
			Parameters: schema([]string{"queue", "consumer_id"}, map[string]any{
				"queue":       strProp("queue name"),
				"consumer_id": strProp("identifies the consuming client"),
			}),
		},
		{
			Name:        "queue.ack",
			Description: "Acknowledge successful processing of a consumed message.",
			Parameters: schema([]string{"queue", "message_id"}, map[string]any{
				"queue":      strProp("queue name"),
				"message_id": strProp("message to acknowledge"),
			}),
		},
		{
			Name:        "queue.nack",
			Description: "Reject a consumed message, optionally requeuing it.",
			Parameters: schema([]string{"queue", "message_id"}, map[string]any{
				"queue":      strProp("queue name"),
				"message_id": strProp("message to reject"),
				"requeue":    boolProp("requeue instead of routing to the dead-letter queue"),
			}),
		},
		{
			Name:        "stream.publish",
			Description: "Append an event to a stream room.",
			Parameters: schema([]string{"room", "event_type", "payload"}, map[string]any{
				"room":        strProp("room name"),
				"event_type":  strProp("event type tag"),
				"payload":     strProp("event body"),
				"producer_id": strProp("identifies the publishing client"),
			}),
		},
		{
			Name:        "stream.consume",
			Description: "Read events from a room starting at an offset.",
			Parameters: schema([]string{"room"}, map[string]any{
				"room":        strProp("room name"),
				"from_offset": numProp("first offset to read, inclusive"),
				"limit":       numProp("maximum events to return"),
			}),
		},
		{
			Name:        "pubsub.publish",
			Description: "Publish a message to a topic's current subscribers.",
			Parameters: schema([]string{"topic", "payload"}, map[string]any{
				"topic":   strProp("topic, may be matched by subscriber wildcard patterns"),
				"payload": strProp("message body"),
			}),
		},
		{
			Name:        "admin.snapshot.create",
			Description: "Materialize a new durability snapshot immediately.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        "admin.snapshot.list",
			Description: "List retained durability snapshots.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        "admin.wal.status",
			Description: "Report the write-ahead log's current sequence number.",
			Parameters:  schema(nil, map[string]any{}),
		},
		{
			Name:        "admin.slowlog.get",
			Description: "Return the most recent slow commands.",
			Parameters:  schema(nil, map[string]any{"limit": numProp("maximum entries to return")}),
		},
	}
}
