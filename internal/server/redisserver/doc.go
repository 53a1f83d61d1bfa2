// Package redisserver provides a Redis RESP2-compatible server dispatching
// commands onto Synap's data-plane engines (kv, queue, stream, pubsub, txn).
//
// The wire codec (resp.go) is a plain stdlib-only RESP2 implementation.
// command.go dispatches string/hash/list/set/zset/bitmap/hll/geo, QUEUE.*,
// STREAM.*, SUBSCRIBE/PUBLISH, and WATCH/MULTI/EXEC/DISCARD commands onto
// the engines.
package redisserver
