// Package wal implements Synap's group-commit write-ahead log: operations
// from every engine are framed, checksummed, and appended to rotating
// segment files under a configurable fsync policy.
package wal

import (
	"errors"

	"github.com/hivellm/synap/internal/durability"
)

// Current wire version for the op-body envelope. Bumped if a payload's
// shape changes in a way recovery needs to distinguish.
const CurrentOpVersion = 1

var (
	ErrCorruptedEntry   = errors.New("wal: corrupted entry")
	ErrChecksumMismatch = errors.New("wal: checksum mismatch")
)

// Entry is one durable record: an engine operation tag plus its pre-encoded
// payload.
type Entry struct {
	OpTag      durability.OpTag
	OpVersion  uint8
	Payload    []byte
}

func newEntry(tag durability.OpTag, payload []byte) *Entry {
	return &Entry{OpTag: tag, OpVersion: CurrentOpVersion, Payload: payload}
}
