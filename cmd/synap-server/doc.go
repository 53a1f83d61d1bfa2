// Package main provides the entry point for synap-server.
//
// The server is the single-node data process that provides:
//
//   - An HTTP command-envelope surface for KV/queue/stream/pub-sub and
//     admin operations
//   - A Redis-compatible RESP protocol port for high-performance access
//   - A local Unix socket for emergency management access
//   - A write-ahead log and periodic snapshots for durability
//
// Usage:
//
//	synap-server [flags]
//	synap-server --config /path/to/config.yaml
//
// The server loads configuration, recovers state from disk if persistence
// is enabled, and starts all configured listeners.
package main
