// Package config defines Synap's server configuration tree.
package config

import "time"

// ServerConfig is the root configuration for synap-server.
type ServerConfig struct {
	Server      ServerSection      `koanf:"server"`
	KV          KVSection          `koanf:"kv"`
	Queue       QueueSection       `koanf:"queue"`
	Stream      StreamSection      `koanf:"stream"`
	Persistence PersistenceSection `koanf:"persistence"`
	Security    SecuritySection    `koanf:"security"`
	Monitoring  MonitoringSection  `koanf:"monitoring"`
	Log         LogSection         `koanf:"log"`
}

// ServerSection configures the transport endpoints.
type ServerSection struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Redis    RedisConfig    `koanf:"redis"`
	Envelope EnvelopeConfig `koanf:"envelope"`
	Local    LocalConfig    `koanf:"local"`
}

// LocalConfig configures the Unix-socket admin listener used for emergency
// management access without API-key authentication.
type LocalConfig struct {
	Path string `koanf:"path"`
}

// HTTPConfig configures the REST/envelope-over-HTTP surface.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`
}

// RedisConfig configures the RESP-compatible server.
type RedisConfig struct {
	Enabled     bool          `koanf:"enabled"`
	Addr        string        `koanf:"addr"`
	TLSAddr     string        `koanf:"tls_addr"`
	TLSEnabled  bool          `koanf:"tls_enabled"`
	TLSCertFile string        `koanf:"tls_cert_file"`
	TLSKeyFile  string        `koanf:"tls_key_file"`
	ReadTimeout time.Duration `koanf:"read_timeout"`
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	RateLimit   int           `koanf:"rate_limit"`
}

// EnvelopeConfig configures the structured command-envelope / agent-tool
// surface. Synap's core never imports this; it is a transport collaborator
// wired only in cmd/synap-server.
type EnvelopeConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// KVSection configures the sharded KV engine.
type KVSection struct {
	Shards         int    `koanf:"shards"`
	MaxMemoryMB    int64  `koanf:"max_memory_mb"`
	EvictionPolicy string `koanf:"eviction_policy"` // lru | lfu | none
	MaxValueBytes  int64  `koanf:"max_value_bytes"`
}

// QueueSection configures default queue behavior.
type QueueSection struct {
	DefaultMaxDepth       int           `koanf:"default_max_depth"`
	DefaultAckDeadline    time.Duration `koanf:"default_ack_deadline"`
	DefaultRetryCeiling   int           `koanf:"default_retry_ceiling"`
	DefaultDLQMaxDepth    int           `koanf:"default_dlq_max_depth"`
	DeadlineScanInterval  time.Duration `koanf:"deadline_scan_interval"`
}

// StreamSection configures default stream room behavior.
type StreamSection struct {
	DefaultMaxEvents int           `koanf:"default_max_events"`
	DefaultMaxAge    time.Duration `koanf:"default_max_age"`
	SubscriberBuffer int           `koanf:"subscriber_buffer"`
}

// PersistenceSection configures the durability engine.
type PersistenceSection struct {
	Enabled  bool           `koanf:"enabled"`
	DataDir  string         `koanf:"data_dir"`
	WAL      WALSection     `koanf:"wal"`
	Snapshot SnapshotSection `koanf:"snapshot"`
}

// WALSection configures the group-commit WAL appender.
type WALSection struct {
	FsyncMode       string        `koanf:"fsync_mode"` // always | periodic | never
	FsyncIntervalMS int           `koanf:"fsync_interval_ms"`
	BufferSizeKB    int           `koanf:"buffer_size_kb"`
	MaxSizeMB       int64         `koanf:"max_size_mb"`
	BatchMaxRecords int           `koanf:"batch_max_records"`
	BatchMaxWait    time.Duration `koanf:"batch_max_wait"`
	SubmitQueueSize int           `koanf:"submit_queue_size"`
	OverloadPolicy  string        `koanf:"overload_policy"` // block | fail
}

// SnapshotSection configures periodic snapshotting.
type SnapshotSection struct {
	IntervalSecs      int `koanf:"interval_secs"`
	OperationThreshold int `koanf:"operation_threshold"`
	MaxSnapshots      int `koanf:"max_snapshots"`
}

// SecuritySection configures optional at-rest encryption.
type SecuritySection struct {
	EncryptionKey string `koanf:"encryption_key"`
}

// MonitoringSection configures observability knobs.
type MonitoringSection struct {
	SlowlogThresholdMS int    `koanf:"slowlog_threshold_ms"`
	SlowlogMaxEntries  int    `koanf:"slowlog_max_entries"`
	MetricsAddr        string `koanf:"metrics_addr"`
}

// LogSection configures structured logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
