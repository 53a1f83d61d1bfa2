// Package domain defines error vocabulary shared across Synap's engines.
//
// Domain types are pure value objects without IO dependencies or framework
// coupling; the only type that lives here today is DomainError, the tagged
// error every engine (kv, queue, stream, pubsub, txn, durability) returns.
package domain
