// Package durability defines the contract the data-plane engines use to
// hand operations to the WAL: the tag vocabulary and the Recorder
// interface a WAL writer satisfies. The concrete WAL
// writer, snapshot manager, and recovery driver that bind against this
// contract live in sibling packages (wal, snapshot, recovery) so the
// engines never import anything heavier than this one.
package durability

// OpTag discriminates the kind of operation recorded in a WAL entry
//. Values are stable on the wire; append-only.
type OpTag uint8

const (
	OpUnspecified OpTag = iota
	OpKVSet
	OpKVDel
	OpKVTTL
	OpHashSet
	OpHashDel
	OpListPush
	OpListPop
	OpSetAdd
	OpSetRem
	OpSortedSetAdd
	OpSortedSetRem
	OpBitmapSet
	OpHyperLogLogAdd
	OpQueueCreate
	OpQueuePublish
	OpQueueAck
	OpQueueNack
	OpStreamCreate
	OpStreamPublish
)

// Recorder is what an engine needs from the durability subsystem: submit a
// tagged, pre-encoded operation body for durable logging. Implementations
// (the group-commit WAL writer) decide batching/fsync policy; Submit blocks
// only when that policy requires it (fsync=always, or back-pressure with
// OverloadPolicy=block).
type Recorder interface {
	Submit(tag OpTag, payload []byte) error
}

// NopRecorder discards every record. Engines use it when persistence is
// disabled (persistence.enabled=false), so the data-plane code never has to
// branch on whether durability is configured.
type NopRecorder struct{}

func (NopRecorder) Submit(OpTag, []byte) error { return nil }
