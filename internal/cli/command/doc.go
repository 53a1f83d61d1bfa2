// Package command provides CLI command definitions for Synap.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags
//   - connect.go: Connection management commands
//   - data.go: Key/value subcommand group (kv.*)
//   - queue.go: Queue subcommand group (queue.*)
//   - stream.go: Stream subcommand group (stream.*)
//   - admin.go: Snapshot, WAL and slowlog subcommand group (admin.*)
//   - config.go: Configuration subcommand group
//   - envelope_client.go: Envelope request helper shared by the groups
//
// Commands follow a consistent pattern of parsing flags,
// sending a command envelope to the server, and formatting output.
//
package command
