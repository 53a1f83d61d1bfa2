// Package envelope implements the structured command-envelope protocol:
// transport-agnostic request/response shapes, a Dispatcher binding each
// command name to exactly one engine method, and an agent-tool adapter
// describing the same commands as tool schemas.
//
// This package is a collaborator, not the core: callers decode bytes off
// whatever transport they run (HTTP, a Unix socket, an agent runtime) into
// an Envelope, call Dispatcher.Dispatch, and encode the Response back out.
package envelope
