// Package metric provides Prometheus metrics for Synap.
package metric

import (
	"os"
	"time"

	"github.com/hivellm/synap/internal/durability/snapshot"
)

// Sampler periodically refreshes gauge metrics that reflect on-disk state
// (total size of the files in the WAL directory, most recent snapshot size). Counters and histograms
// are updated inline by their callers since those change on every
// operation rather than on a timer.
type Sampler struct {
	registry    *Registry
	walDir      string
	snapshotMgr *snapshot.Manager
	interval    time.Duration
	stop        chan struct{}
}

// NewSampler constructs a Sampler. snapshotMgr may be nil when persistence
// is disabled; snapshot size then stays at zero.
func NewSampler(registry *Registry, walDir string, snapshotMgr *snapshot.Manager, interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Sampler{
		registry:    registry,
		walDir:      walDir,
		snapshotMgr: snapshotMgr,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

// Start begins sampling in a background goroutine.
func (s *Sampler) Start() {
	go s.loop()
}

// Stop ends the sampling goroutine.
func (s *Sampler) Stop() {
	close(s.stop)
}

func (s *Sampler) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.stop:
			return
		}
	}
}

func (s *Sampler) sample() {
	s.registry.WALSizeBytes.Set(float64(dirSize(s.walDir)))

	if s.snapshotMgr == nil {
		return
	}
	infos, err := s.snapshotMgr.List()
	if err != nil || len(infos) == 0 {
		return
	}
	s.registry.SnapshotSizeBytes.Set(float64(infos[len(infos)-1].Size))
}

func dirSize(dir string) int64 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total
}
