// Package localserver provides Unix socket server for local management.
//
// This package implements a local-only management interface via a Unix
// domain socket. It accepts these newline-delimited commands, each answered
// with one line of JSON:
//
//   - status: server status
//   - shutdown: graceful shutdown
//   - reload: configuration reload
//   - drain: stop accepting new work
//
// Windows named pipes are not supported.
//
// Security:
//
//   - Only accessible via the Unix domain socket
//   - File system permissions control access
//   - No API key required (physical/local access only)
//
package localserver
