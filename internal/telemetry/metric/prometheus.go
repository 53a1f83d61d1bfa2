// Package metric provides Prometheus metrics for Synap.
//
// It exposes metrics in Prometheus format for monitoring command
// throughput and latency, queue depth, and WAL/snapshot size.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric Synap exports.
type Registry struct {
	registry *prometheus.Registry

	CommandsTotal     *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	QueueDepth        *prometheus.GaugeVec
	StreamEvents      *prometheus.CounterVec
	WALSizeBytes      prometheus.Gauge
	SnapshotSizeBytes prometheus.Gauge
	SlowCommandsTotal prometheus.Counter
}

// NewRegistry creates a Registry and registers every metric with it.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synap_commands_total",
			Help: "Total envelope commands dispatched, by command and outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "synap_command_duration_seconds",
			Help:    "Envelope command latency in seconds, by command.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "synap_queue_depth",
			Help: "Current message count per queue.",
		}, []string{"queue"}),
		StreamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "synap_stream_events_total",
			Help: "Total events published, by room.",
		}, []string{"room"}),
		WALSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "synap_wal_size_bytes",
			Help: "Total size of the files in the WAL directory in bytes.",
		}),
		SnapshotSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "synap_snapshot_size_bytes",
			Help: "Size of the most recent snapshot in bytes.",
		}),
		SlowCommandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synap_slow_commands_total",
			Help: "Total commands that crossed the slowlog threshold.",
		}),
	}

	reg.MustRegister(
		r.CommandsTotal,
		r.CommandDuration,
		r.QueueDepth,
		r.StreamEvents,
		r.WALSizeBytes,
		r.SnapshotSizeBytes,
		r.SlowCommandsTotal,
	)

	return r
}

// Handler returns an http.Handler serving this registry in the Prometheus
// exposition format, suitable for mounting at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
