package envelope

import (
	"time"

	"github.com/hivellm/synap/internal/durability/snapshot"
	"github.com/hivellm/synap/internal/durability/wal"
	"github.com/hivellm/synap/internal/engine/kv"
	"github.com/hivellm/synap/internal/engine/pubsub"
	"github.com/hivellm/synap/internal/engine/queue"
	"github.com/hivellm/synap/internal/engine/stream"
	"github.com/hivellm/synap/internal/shared/slowlog"
)

// Engines bundles the data-plane engines a command dispatches against, the
// same grouping redisserver.Engines uses for the RESP transport.
type Engines struct {
	KV     *kv.Store
	Queue  *queue.Manager
	Stream *stream.Manager
	PubSub *pubsub.Router
}

// Admin bundles the operational surface a command dispatches against:
// durability internals and the slowlog, otherwise unreachable from outside
// the process.
type Admin struct {
	Snapshots *snapshot.Manager
	WAL       *wal.Writer
	Slowlog   *slowlog.Ring
}

// Dispatcher maps envelope command names onto exactly one engine or admin
// method each: a transport adapter decodes a request and invokes a single
// engine method.
type Dispatcher struct {
	engines Engines
	admin   Admin
}

// NewDispatcher builds a Dispatcher. Admin is optional: a zero Admin serves
// data-plane commands and fails admin.* ones with SYN-SYS-5010.
func NewDispatcher(engines Engines, admin Admin) *Dispatcher {
	return &Dispatcher{engines: engines, admin: admin}
}

// Dispatch decodes env.Payload, invokes the bound engine method, and
// encodes the result into a Response. Unknown commands, missing payload
// fields, and engine errors all become a failed Response rather than a Go
// error: the caller's transport (HTTP, socket, agent runtime) never needs
// its own error-mapping layer.
func (d *Dispatcher) Dispatch(env Envelope) Response {
	switch env.Command {
	case "kv.get":
		return d.kvGet(env)
	case "kv.set":
		return d.kvSet(env)
	case "kv.del":
		return d.kvDel(env)
	case "kv.expire":
		return d.kvExpire(env)
	case "queue.publish":
		return d.queuePublish(env)
	case "queue.consume":
		return d.queueConsume(env)
	case "queue.ack":
		return d.queueAck(env)
	case "queue.nack":
		return d.queueNack(env)
	case "stream.publish":
		return d.streamPublish(env)
	case "stream.consume":
		return d.streamConsume(env)
	case "pubsub.publish":
		return d.pubsubPublish(env)
	case "admin.snapshot.create":
		return d.adminSnapshotCreate(env)
	case "admin.snapshot.list":
		return d.adminSnapshotList(env)
	case "admin.wal.status":
		return d.adminWALStatus(env)
	case "admin.slowlog.get":
		return d.adminSlowlogGet(env)
	default:
		return fail(env.RequestID, "SYN-SYS-4040", "unknown command", env.Command)
	}
}

func str(p map[string]any, key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

func num(p map[string]any, key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

func missing(env Envelope, field string) Response {
	return fail(env.RequestID, "SYN-SYS-4000", "invalid argument", field+" is required")
}

func engineErr(env Envelope, err error) Response {
	return fail(env.RequestID, errCode(err), err.Error(), "")
}

// --- kv.* ---

func (d *Dispatcher) kvGet(env Envelope) Response {
	key, ok := str(env.Payload, "key")
	if !ok {
		return missing(env, "key")
	}
	v, err := d.engines.KV.Get(key)
	if err != nil {
		return engineErr(env, err)
	}
	return ok2(env, map[string]any{"value": string(v)})
}

func (d *Dispatcher) kvSet(env Envelope) Response {
	key, ok := str(env.Payload, "key")
	if !ok {
		return missing(env, "key")
	}
	value, ok := str(env.Payload, "value")
	if !ok {
		return missing(env, "value")
	}
	var opts kv.SetOptions
	if ttl, ok := num(env.Payload, "ttl_seconds"); ok {
		opts.TTL = int64(ttl) * int64(time.Second)
	}
	stored, err := d.engines.KV.Set(key, []byte(value), opts)
	if err != nil {
		return engineErr(env, err)
	}
	return ok2(env, map[string]any{"stored": stored})
}

func (d *Dispatcher) kvDel(env Envelope) Response {
	key, ok := str(env.Payload, "key")
	if !ok {
		return missing(env, "key")
	}
	n := d.engines.KV.Del(key)
	return ok2(env, map[string]any{"deleted": n})
}

func (d *Dispatcher) kvExpire(env Envelope) Response {
	key, ok := str(env.Payload, "key")
	if !ok {
		return missing(env, "key")
	}
	seconds, ok := num(env.Payload, "ttl_seconds")
	if !ok {
		return missing(env, "ttl_seconds")
	}
	applied, err := d.engines.KV.Expire(key, int64(seconds)*int64(time.Second))
	if err != nil {
		return engineErr(env, err)
	}
	return ok2(env, map[string]any{"applied": applied})
}

// --- queue.* ---

func (d *Dispatcher) queuePublish(env Envelope) Response {
	name, ok := str(env.Payload, "queue")
	if !ok {
		return missing(env, "queue")
	}
	payload, ok := str(env.Payload, "payload")
	if !ok {
		return missing(env, "payload")
	}
	priority, _ := num(env.Payload, "priority")
	id, err := d.engines.Queue.Publish(name, []byte(payload), uint8(priority), nil)
	if err != nil {
		return engineErr(env, err)
	}
	return ok2(env, map[string]any{"message_id": id})
}

func (d *Dispatcher) queueConsume(env Envelope) Response {
	name, ok := str(env.Payload, "queue")
	if !ok {
		return missing(env, "queue")
	}
	consumerID, ok := str(env.Payload, "consumer_id")
	if !ok {
		return missing(env, "consumer_id")
	}
	msg, found, err := d.engines.Queue.Consume(name, consumerID)
	if err != nil {
		return engineErr(env, err)
	}
	if !found {
		return ok2(env, map[string]any{"found": false})
	}
	return ok2(env, map[string]any{
		"found":      true,
		"message_id": msg.ID,
		"priority":   msg.Priority,
		"payload":    string(msg.Payload),
	})
}

func (d *Dispatcher) queueAck(env Envelope) Response {
	name, ok := str(env.Payload, "queue")
	if !ok {
		return missing(env, "queue")
	}
	id, ok := str(env.Payload, "message_id")
	if !ok {
		return missing(env, "message_id")
	}
	if err := d.engines.Queue.Ack(name, id); err != nil {
		return engineErr(env, err)
	}
	return ok2(env, nil)
}

func (d *Dispatcher) queueNack(env Envelope) Response {
	name, ok := str(env.Payload, "queue")
	if !ok {
		return missing(env, "queue")
	}
	id, ok := str(env.Payload, "message_id")
	if !ok {
		return missing(env, "message_id")
	}
	requeue, _ := env.Payload["requeue"].(bool)
	if err := d.engines.Queue.Nack(name, id, requeue); err != nil {
		return engineErr(env, err)
	}
	return ok2(env, nil)
}

// --- stream.* ---

func (d *Dispatcher) streamPublish(env Envelope) Response {
	room, ok := str(env.Payload, "room")
	if !ok {
		return missing(env, "room")
	}
	eventType, ok := str(env.Payload, "event_type")
	if !ok {
		return missing(env, "event_type")
	}
	data, ok := str(env.Payload, "payload")
	if !ok {
		return missing(env, "payload")
	}
	producerID, _ := str(env.Payload, "producer_id")
	offset := d.engines.Stream.Publish(room, eventType, []byte(data), producerID)
	return ok2(env, map[string]any{"offset": offset})
}

func (d *Dispatcher) streamConsume(env Envelope) Response {
	room, ok := str(env.Payload, "room")
	if !ok {
		return missing(env, "room")
	}
	fromOffset, _ := num(env.Payload, "from_offset")
	limit, _ := num(env.Payload, "limit")
	events, err := d.engines.Stream.Consume(room, uint64(fromOffset), int(limit))
	if err != nil {
		return engineErr(env, err)
	}
	out := make([]map[string]any, len(events))
	for i, e := range events {
		out[i] = map[string]any{
			"offset": e.Offset,
			"type":   e.Type,
			"data":   string(e.Data),
		}
	}
	return ok2(env, map[string]any{"events": out})
}

// --- pubsub.* ---

func (d *Dispatcher) pubsubPublish(env Envelope) Response {
	topic, ok := str(env.Payload, "topic")
	if !ok {
		return missing(env, "topic")
	}
	payload, ok := str(env.Payload, "payload")
	if !ok {
		return missing(env, "payload")
	}
	delivered := d.engines.PubSub.Publish(topic, []byte(payload))
	return ok2(env, map[string]any{"delivered": delivered})
}

// --- admin.* ---

func (d *Dispatcher) adminSnapshotCreate(env Envelope) Response {
	if d.admin.Snapshots == nil {
		return fail(env.RequestID, "SYN-SYS-5010", "admin surface unavailable", "persistence is disabled")
	}
	body := snapshot.Body{
		KV:      d.engines.KV.Export(),
		Queues:  d.engines.Queue.Export(),
		Streams: d.engines.Stream.Export(),
	}
	var walOffset uint64
	if d.admin.WAL != nil {
		walOffset = d.admin.WAL.Sequence()
	}
	info, err := d.admin.Snapshots.Create(body, walOffset)
	if err != nil {
		return engineErr(env, err)
	}
	return ok2(env, map[string]any{"path": info.Path, "created_at": info.CreatedAt, "wal_offset": info.WALOffset})
}

func (d *Dispatcher) adminSnapshotList(env Envelope) Response {
	if d.admin.Snapshots == nil {
		return fail(env.RequestID, "SYN-SYS-5010", "admin surface unavailable", "persistence is disabled")
	}
	infos, err := d.admin.Snapshots.List()
	if err != nil {
		return engineErr(env, err)
	}
	out := make([]map[string]any, len(infos))
	for i, info := range infos {
		out[i] = map[string]any{
			"path":       info.Path,
			"created_at": info.CreatedAt,
			"wal_offset": info.WALOffset,
		}
	}
	return ok2(env, map[string]any{"snapshots": out})
}

func (d *Dispatcher) adminWALStatus(env Envelope) Response {
	if d.admin.WAL == nil {
		return fail(env.RequestID, "SYN-SYS-5010", "admin surface unavailable", "persistence is disabled")
	}
	return ok2(env, map[string]any{"sequence": d.admin.WAL.Sequence()})
}

func (d *Dispatcher) adminSlowlogGet(env Envelope) Response {
	if d.admin.Slowlog == nil {
		return fail(env.RequestID, "SYN-SYS-5010", "admin surface unavailable", "slowlog is disabled")
	}
	limit, _ := num(env.Payload, "limit")
	entries := d.admin.Slowlog.Recent(int(limit))
	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"command":     e.Command,
			"key":         e.Key,
			"duration_ms": e.Duration.Milliseconds(),
			"at":          e.At,
		}
	}
	return ok2(env, map[string]any{"entries": out})
}

func ok2(env Envelope, payload map[string]any) Response {
	return ok(env.RequestID, payload)
}
