package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/hivellm/synap/internal/config"
	"github.com/hivellm/synap/internal/durability"
	"github.com/hivellm/synap/internal/durability/recovery"
	"github.com/hivellm/synap/internal/durability/snapshot"
	"github.com/hivellm/synap/internal/durability/wal"
	"github.com/hivellm/synap/internal/engine/kv"
	"github.com/hivellm/synap/internal/engine/pubsub"
	"github.com/hivellm/synap/internal/engine/queue"
	"github.com/hivellm/synap/internal/engine/stream"
	"github.com/hivellm/synap/internal/engine/txn"
	"github.com/hivellm/synap/internal/infra/buildinfo"
	"github.com/hivellm/synap/internal/infra/confloader"
	"github.com/hivellm/synap/internal/infra/shutdown"
	"github.com/hivellm/synap/internal/infra/tlsroots"
	"github.com/hivellm/synap/internal/server/envelope"
	"github.com/hivellm/synap/internal/server/localserver"
	"github.com/hivellm/synap/internal/server/redisserver"
	"github.com/hivellm/synap/internal/shared/slowlog"
	"github.com/hivellm/synap/internal/telemetry/logger"
	"github.com/hivellm/synap/internal/telemetry/metric"
	"github.com/hivellm/synap/pkg/crypto/adaptive"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	startedAt := time.Now()

	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting synap-server", "version", buildinfo.Version, "commit", buildinfo.Commit, "config", *configFile)

	engines, admin, metricsRegistry, closeDurability, err := initEngines(cfg, log)
	if err != nil {
		return fmt.Errorf("init engines: %w", err)
	}

	dispatcher := envelope.NewDispatcher(envelope.Engines{
		KV:     engines.KV,
		Queue:  engines.Queue,
		Stream: engines.Stream,
		PubSub: engines.PubSub,
	}, admin)

	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTP.Addr,
		Handler: envelope.HTTPHandler(dispatcher, slog.Default(), metricsRegistry),
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP command surface")
		return httpServer.Shutdown(ctx)
	})
	go func() {
		log.Info("HTTP command surface listening", "addr", cfg.Server.HTTP.Addr)
		var err error
		if cfg.Server.HTTP.TLSCertFile != "" && cfg.Server.HTTP.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Error("HTTP command surface error", "error", err)
		}
	}()

	var redisServer *redisserver.Server
	var certWatcher *tlsroots.Watcher
	if cfg.Server.Redis.Enabled {
		redisCfg := &redisserver.Config{
			PlainEnabled: cfg.Server.Redis.Enabled,
			PlainAddress: cfg.Server.Redis.Addr,
			TLSEnabled:   cfg.Server.Redis.TLSEnabled,
			TLSAddress:   cfg.Server.Redis.TLSAddr,
			ReadTimeout:  cfg.Server.Redis.ReadTimeout,
			WriteTimeout: cfg.Server.Redis.ReadTimeout,
			IdleTimeout:  cfg.Server.Redis.IdleTimeout,
			RateLimit:    cfg.Server.Redis.RateLimit,
			MaxBulkLen:   maxBulkLenFromConfig(cfg.KV.MaxValueBytes),
		}

		if cfg.Server.Redis.TLSEnabled && cfg.Server.Redis.TLSCertFile != "" && cfg.Server.Redis.TLSKeyFile != "" {
			w, err := tlsroots.NewWatcher(cfg.Server.Redis.TLSCertFile, cfg.Server.Redis.TLSKeyFile, tlsroots.WithLogger(slog.Default()))
			if err != nil {
				return fmt.Errorf("load RESP TLS certificate: %w", err)
			}
			certWatcher = w
			certWatcher.StartAsync()
			redisCfg.TLSConfig = &tls.Config{GetCertificate: certWatcher.GetCertificate}
		}

		redisServer = redisserver.New(redisCfg, redisserver.Engines{
			KV:     engines.KV,
			Queue:  engines.Queue,
			Stream: engines.Stream,
			PubSub: engines.PubSub,
			Txn:    engines.Txn,
		}, slog.Default())

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down RESP server")
			if certWatcher != nil {
				certWatcher.Stop()
			}
			return redisServer.Shutdown(ctx)
		})
		go func() {
			log.Info("RESP server listening", "addr", cfg.Server.Redis.Addr)
			if err := redisServer.Start(context.Background()); err != nil {
				log.Error("RESP server error", "error", err)
			}
		}()
	}

	var metricsServer *http.Server
	if cfg.Monitoring.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricsRegistry.Handler())
		metricsServer = &http.Server{Addr: cfg.Monitoring.MetricsAddr, Handler: metricsMux}

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsServer.Shutdown(ctx)
		})
		go func() {
			log.Info("metrics server listening", "addr", cfg.Monitoring.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	localHandler := localserver.NewHandler(localserver.Callbacks{
		Status: func() localserver.StatusReport {
			return localserver.StatusReport{
				Version:     buildinfo.Version,
				Commit:      buildinfo.Commit,
				Uptime:      time.Since(startedAt).String(),
				Persistence: cfg.Persistence.Enabled,
			}
		},
		Shutdown: func() error {
			log.Info("shutdown requested via admin socket")
			return syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		},
		Reload: func() error {
			return fmt.Errorf("hot reload not supported yet")
		},
		Drain: func() error {
			return fmt.Errorf("connection draining not supported yet")
		},
	})
	localSrv := localserver.New(cfg.Server.Local.Path, localHandler)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down local admin socket")
		return localSrv.Shutdown(ctx)
	})
	go func() {
		log.Info("local admin socket listening", "path", cfg.Server.Local.Path)
		if err := localSrv.ListenAndServe(); err != nil {
			log.Error("local admin socket error", "error", err)
		}
	}()

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing durability engine and data-plane engines")
		closeDurability()
		return nil
	})

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// maxBulkLenFromConfig derives the RESP bulk-string limit from the KV
// engine's configured max value size, clamping to int range on platforms
// where int is narrower than int64.
func maxBulkLenFromConfig(maxValueBytes int64) int {
	if maxValueBytes <= 0 {
		return redisserver.MaxBulkLen
	}
	if maxValueBytes > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(maxValueBytes)
}

// initLogger initializes the structured logger and installs it as the
// process-wide default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// Engines groups the data-plane engines a running server exposes.
type Engines struct {
	KV     *kv.Store
	Queue  *queue.Manager
	Stream *stream.Manager
	PubSub *pubsub.Router
	Txn    *txn.Coordinator
}

// initEngines builds the data-plane engines and, if persistence is
// enabled, the durability stack (WAL writer, snapshot manager, recovery,
// periodic snapshotting) in front of them. It returns a close function
// that stops every background goroutine the engines and durability stack
// started, in dependency order.
func initEngines(cfg *config.ServerConfig, log logger.Logger) (Engines, envelope.Admin, *metric.Registry, func(), error) {
	var (
		recorder    durability.Recorder = durability.NopRecorder{}
		walWriter   *wal.Writer
		snapshotMgr *snapshot.Manager
		snapshotter *recovery.Snapshotter
		sampler     *metric.Sampler
	)

	metricsRegistry := metric.NewRegistry()

	if cfg.Persistence.Enabled {
		dcfg := durability.EngineConfig{
			Enabled:             true,
			DataDir:             cfg.Persistence.DataDir,
			FsyncMode:           cfg.Persistence.WAL.FsyncMode,
			FsyncInterval:       time.Duration(cfg.Persistence.WAL.FsyncIntervalMS) * time.Millisecond,
			MaxWALSizeMB:        cfg.Persistence.WAL.MaxSizeMB,
			SnapshotInterval:    time.Duration(cfg.Persistence.Snapshot.IntervalSecs) * time.Second,
			SnapshotOpThreshold: uint64(cfg.Persistence.Snapshot.OperationThreshold),
			MaxSnapshots:        cfg.Persistence.Snapshot.MaxSnapshots,
		}

		w, err := wal.NewWriter(wal.Config{
			Dir:             dcfg.WALDir(),
			FsyncMode:       wal.FsyncMode(dcfg.FsyncMode),
			FsyncInterval:   dcfg.FsyncInterval,
			BatchCount:      cfg.Persistence.WAL.BatchMaxRecords,
			BatchBytes:      int64(cfg.Persistence.WAL.BufferSizeKB) << 10,
			BatchWait:       cfg.Persistence.WAL.BatchMaxWait,
			MaxFileSize:     dcfg.MaxWALSizeMB << 20,
			SubmitQueueSize: cfg.Persistence.WAL.SubmitQueueSize,
			OverloadPolicy:  wal.OverloadPolicy(cfg.Persistence.WAL.OverloadPolicy),
		})
		if err != nil {
			return Engines{}, envelope.Admin{}, nil, nil, fmt.Errorf("open WAL: %w", err)
		}
		walWriter = w
		recorder = w

		var cipher adaptive.Cipher
		if cfg.Security.EncryptionKey != "" {
			cipher, err = adaptive.New([]byte(cfg.Security.EncryptionKey))
			if err != nil {
				return Engines{}, envelope.Admin{}, nil, nil, fmt.Errorf("init snapshot cipher: %w", err)
			}
		}

		snapshotMgr, err = snapshot.NewManager(snapshot.Config{
			Dir:            dcfg.SnapshotDir(),
			RetentionCount: dcfg.MaxSnapshots,
			Cipher:         cipher,
		})
		if err != nil {
			return Engines{}, envelope.Admin{}, nil, nil, fmt.Errorf("open snapshot manager: %w", err)
		}
	}

	kvStore := kv.New(kv.Config{
		ShardCount:     uint32(cfg.KV.Shards),
		MaxMemoryBytes: cfg.KV.MaxMemoryMB << 20,
		MaxValueBytes:  cfg.KV.MaxValueBytes,
		Eviction:       kv.EvictionPolicy(cfg.KV.EvictionPolicy),
		Recorder:       recorder,
	})
	queueMgr := queue.NewManager(queue.ManagerConfig{
		DefaultMaxDepth:     cfg.Queue.DefaultMaxDepth,
		DefaultAckDeadline:  cfg.Queue.DefaultAckDeadline,
		DefaultRetryCeiling: cfg.Queue.DefaultRetryCeiling,
		DefaultDLQMaxDepth:  cfg.Queue.DefaultDLQMaxDepth,
		DeadlineScanEvery:   cfg.Queue.DeadlineScanInterval,
		Recorder:            recorder,
	})
	streamMgr := stream.NewManager(stream.ManagerConfig{
		DefaultRetention: stream.Retention{MaxCount: uint64(cfg.Stream.DefaultMaxEvents), MaxAge: cfg.Stream.DefaultMaxAge},
		Recorder:         recorder,
	})
	pubsubRouter := pubsub.NewRouter()
	txnCoordinator := txn.NewCoordinator(kvStore)

	if cfg.Persistence.Enabled {
		recEngines := recovery.Engines{KV: kvStore, Queue: queueMgr, Stream: streamMgr}
		n, err := recovery.Recover(recEngines, snapshotMgr, durability.EngineConfig{DataDir: cfg.Persistence.DataDir}.WALDir())
		if err != nil {
			return Engines{}, envelope.Admin{}, nil, nil, fmt.Errorf("recover from disk: %w", err)
		}
		log.Info("recovery complete", "wal_records_replayed", n)

		snapshotter = recovery.NewSnapshotter(recEngines, snapshotMgr, walWriter, time.Duration(cfg.Persistence.Snapshot.IntervalSecs)*time.Second, uint64(cfg.Persistence.Snapshot.OperationThreshold))
		snapshotter.Start()

		sampler = metric.NewSampler(metricsRegistry, durability.EngineConfig{DataDir: cfg.Persistence.DataDir}.WALDir(), snapshotMgr, time.Duration(cfg.Persistence.Snapshot.IntervalSecs)*time.Second)
		sampler.Start()
	}

	slowlogRing := slowlog.NewRing(
		cfg.Monitoring.SlowlogMaxEntries,
		time.Duration(cfg.Monitoring.SlowlogThresholdMS)*time.Millisecond,
		nil,
	)

	admin := envelope.Admin{Snapshots: snapshotMgr, WAL: walWriter, Slowlog: slowlogRing}

	closeFn := func() {
		if sampler != nil {
			sampler.Stop()
		}
		if snapshotter != nil {
			snapshotter.Stop()
		}
		kvStore.Close()
		queueMgr.Close()
		if walWriter != nil {
			if err := walWriter.Close(); err != nil {
				log.Error("close WAL", "error", err)
			}
		}
	}

	return Engines{KV: kvStore, Queue: queueMgr, Stream: streamMgr, PubSub: pubsubRouter, Txn: txnCoordinator}, admin, metricsRegistry, closeFn, nil
}
