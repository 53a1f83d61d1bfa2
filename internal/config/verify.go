package config

import (
	"fmt"
	"os"
)

// Verify validates cfg, returning the first error found.
func Verify(cfg *ServerConfig) error {
	if err := verifyKV(&cfg.KV); err != nil {
		return err
	}
	if err := verifyPersistence(&cfg.Persistence); err != nil {
		return err
	}
	if err := verifyQueue(&cfg.Queue); err != nil {
		return err
	}
	return nil
}

func verifyKV(cfg *KVSection) error {
	if cfg.Shards != 0 && cfg.Shards&(cfg.Shards-1) != 0 {
		return fmt.Errorf("kv.shards must be a power of two, got %d", cfg.Shards)
	}
	switch cfg.EvictionPolicy {
	case "", "lru", "lfu", "none":
	default:
		return fmt.Errorf("kv.eviction_policy must be one of lru|lfu|none, got %q", cfg.EvictionPolicy)
	}
	return nil
}

func verifyQueue(cfg *QueueSection) error {
	if cfg.DefaultMaxDepth < 0 {
		return fmt.Errorf("queue.default_max_depth must be >= 0")
	}
	return nil
}

func verifyPersistence(cfg *PersistenceSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("persistence.data_dir is required when persistence.enabled=true")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	switch cfg.WAL.FsyncMode {
	case "", "always", "periodic", "never":
	default:
		return fmt.Errorf("persistence.wal.fsync_mode must be one of always|periodic|never, got %q", cfg.WAL.FsyncMode)
	}
	if cfg.Snapshot.MaxSnapshots < 1 {
		return fmt.Errorf("persistence.snapshot.max_snapshots must be at least 1")
	}
	return nil
}
