// Package main provides the entry point for synap-cli.
//
// The CLI tool provides command-line access to a running synap-server for:
//
//   - KV, queue, and stream operations (data get/set, queue publish/consume,
//     stream publish/consume)
//   - Administrative operations (snapshot, WAL status, slowlog)
//   - CLI and server-side configuration inspection
//
// Usage:
//
//	synap-cli [command] [flags]
//	synap-cli data get mykey
//	synap-cli connect http://localhost:7080
//
// Running synap-cli with no arguments starts an interactive REPL session
// over the same command set.
package main
