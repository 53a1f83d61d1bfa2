// Package metric provides Prometheus metrics for Synap.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: periodic on-disk sampler for WAL/snapshot size
//
// Metrics include:
//
//   - Command throughput and latency histograms
//   - Queue depth and stream event counters
//   - WAL and snapshot size gauges
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
