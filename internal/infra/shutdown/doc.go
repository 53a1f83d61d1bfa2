// Package shutdown provides graceful shutdown for Synap.
//
// This package handles process termination signals:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - A timeout on the context passed to shutdown hooks
//   - Cleanup callback registration
//   - Shutdown coordination
//
// Wait runs every hook to completion; the timeout only bounds the context
// the hooks receive and does not interrupt them.
//
// Usage:
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	err := h.Wait() // blocks until SIGINT/SIGTERM, then runs hooks in reverse order
//
package shutdown
