// Package connection provides connection management for Synap CLI.
//
// This package manages connections to Synap servers:
//
//   - manager.go: Current-connection tracking, with a reachability probe on connect
//   - http.go: HTTP/HTTPS client implementation
//   - socket.go: Unix socket client
//
// The manager holds a single current connection. It does not reconnect
// automatically and does not monitor a connection after the initial probe.
//
package connection
