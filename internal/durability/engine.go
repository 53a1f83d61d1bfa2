package durability

import (
	"path/filepath"
	"time"
)

// EngineConfig configures the durability subsystem as a whole.
type EngineConfig struct {
	Enabled bool

	DataDir string

	FsyncMode     string // "always"/"periodic"/"never"
	FsyncInterval time.Duration
	MaxWALSizeMB  int64

	SnapshotInterval  time.Duration
	SnapshotOpThreshold uint64
	MaxSnapshots      int
}

// WALDir and SnapshotDir are the fixed subdirectories under DataDir.
func (c EngineConfig) WALDir() string      { return filepath.Join(c.DataDir, "wal") }
func (c EngineConfig) SnapshotDir() string { return filepath.Join(c.DataDir, "snapshots") }
