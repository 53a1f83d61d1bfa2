// Package connection provides connection management for synap-cli.
package connection

import (
	"context"
	"fmt"
	"time"
)

// Manager manages connections to Synap servers.
type Manager struct {
	current *Connection
}

// Connection represents a connection to a Synap server.
type Connection struct {
	Name     string
	Server   string
	APIKeyID string
	APIKey   string
	TLS      bool
}

// NewManager creates a new connection manager.
func NewManager() *Manager {
	return &Manager{}
}

// Connect validates conn (a non-empty server address), probes it with a
// short-timeout GET against the envelope tool listing, and — only once that
// probe succeeds — sets it as the current connection.
func (m *Manager) Connect(conn *Connection) error {
	if conn == nil || conn.Server == "" {
		return fmt.Errorf("connection must have a server address")
	}

	client := NewHTTPClient(conn.Server, conn.APIKeyID, conn.APIKey)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Get(ctx, "/v1/tools")
	if err != nil {
		return fmt.Errorf("connect to %s: %w", conn.Server, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("connect to %s: server returned status %d", conn.Server, resp.StatusCode)
	}

	m.current = conn
	return nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	m.current = nil
}

// Current returns the current connection.
func (m *Manager) Current() *Connection {
	return m.current
}

// IsConnected returns true if connected to a server.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
