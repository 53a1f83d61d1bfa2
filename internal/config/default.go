package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:7080"
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultEnvelopeAddr = "127.0.0.1:7081"
	DefaultLocalPath    = "/var/run/synap/synap.sock"

	DefaultDataDir = "/var/lib/synap/data"

	DefaultKVShards         = 256
	DefaultEvictionPolicy   = "none"
	DefaultMaxValueBytes    = 512 << 20 // 512 MiB

	DefaultQueueMaxDepth      = 10000
	DefaultAckDeadline        = 30 * time.Second
	DefaultRetryCeiling       = 5
	DefaultDLQMaxDepth        = 1000
	DefaultDeadlineScan       = 250 * time.Millisecond

	DefaultStreamMaxEvents  = 10000
	DefaultSubscriberBuffer = 256

	DefaultFsyncMode       = "periodic"
	DefaultFsyncIntervalMS = 100
	DefaultBufferSizeKB    = 64
	DefaultMaxSizeMB       = int64(64)
	DefaultBatchMaxRecords = 10000
	DefaultBatchMaxWait    = 100 * time.Microsecond
	DefaultSubmitQueueSize = 65536
	DefaultOverloadPolicy  = "block"

	DefaultSnapshotIntervalSecs  = 300
	DefaultSnapshotOpThreshold   = 50000
	DefaultMaxSnapshots          = 3

	DefaultSlowlogThresholdMS = 10
	DefaultSlowlogMaxEntries  = 128
	DefaultMetricsAddr        = "127.0.0.1:7090"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default Synap server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{Addr: DefaultHTTPAddr},
			Redis: RedisConfig{
				Enabled:     true,
				Addr:        DefaultRedisAddr,
				ReadTimeout: 30 * time.Second,
				IdleTimeout: 5 * time.Minute,
				RateLimit:   1000,
			},
			Envelope: EnvelopeConfig{Enabled: true, Addr: DefaultEnvelopeAddr},
			Local:    LocalConfig{Path: DefaultLocalPath},
		},
		KV: KVSection{
			Shards:         DefaultKVShards,
			EvictionPolicy: DefaultEvictionPolicy,
			MaxValueBytes:  DefaultMaxValueBytes,
		},
		Queue: QueueSection{
			DefaultMaxDepth:      DefaultQueueMaxDepth,
			DefaultAckDeadline:   DefaultAckDeadline,
			DefaultRetryCeiling:  DefaultRetryCeiling,
			DefaultDLQMaxDepth:   DefaultDLQMaxDepth,
			DeadlineScanInterval: DefaultDeadlineScan,
		},
		Stream: StreamSection{
			DefaultMaxEvents: DefaultStreamMaxEvents,
			SubscriberBuffer: DefaultSubscriberBuffer,
		},
		Persistence: PersistenceSection{
			Enabled: false,
			DataDir: DefaultDataDir,
			WAL: WALSection{
				FsyncMode:       DefaultFsyncMode,
				FsyncIntervalMS: DefaultFsyncIntervalMS,
				BufferSizeKB:    DefaultBufferSizeKB,
				MaxSizeMB:       DefaultMaxSizeMB,
				BatchMaxRecords: DefaultBatchMaxRecords,
				BatchMaxWait:    DefaultBatchMaxWait,
				SubmitQueueSize: DefaultSubmitQueueSize,
				OverloadPolicy:  DefaultOverloadPolicy,
			},
			Snapshot: SnapshotSection{
				IntervalSecs:       DefaultSnapshotIntervalSecs,
				OperationThreshold: DefaultSnapshotOpThreshold,
				MaxSnapshots:       DefaultMaxSnapshots,
			},
		},
		Monitoring: MonitoringSection{
			SlowlogThresholdMS: DefaultSlowlogThresholdMS,
			SlowlogMaxEntries:  DefaultSlowlogMaxEntries,
			MetricsAddr:        DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
