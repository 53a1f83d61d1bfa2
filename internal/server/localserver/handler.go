// Package localserver provides the local management server.
package localserver

import (
	"encoding/json"
	"io"
)

// StatusReport is the payload returned by the "status" command.
type StatusReport struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Uptime      string `json:"uptime"`
	Persistence bool   `json:"persistence_enabled"`
}

// Callbacks bundles the operations Handler dispatches to the running
// server process. A nil callback reports its command as unsupported
// rather than panicking.
type Callbacks struct {
	Status   func() StatusReport
	Shutdown func() error
	Reload   func() error
	Drain    func() error
}

// Handler handles local management commands received over the admin
// socket, translating each into a Callbacks invocation.
type Handler struct {
	callbacks Callbacks
}

// NewHandler creates a Handler bound to the given callbacks.
func NewHandler(callbacks Callbacks) *Handler {
	return &Handler{callbacks: callbacks}
}

// Execute executes a local management command, writing its result (or
// error) to w as one line of JSON.
func (h *Handler) Execute(w io.Writer, cmd string, args []string) error {
	switch cmd {
	case "status":
		return h.handleStatus(w)
	case "shutdown":
		return h.handleShutdown(w)
	case "reload":
		return h.handleReload(w)
	case "drain":
		return h.handleDrain(w)
	default:
		return writeLine(w, map[string]string{"error": "unknown command: " + cmd})
	}
}

func (h *Handler) handleStatus(w io.Writer) error {
	if h.callbacks.Status == nil {
		return writeLine(w, map[string]string{"error": "status unavailable"})
	}
	return writeLine(w, h.callbacks.Status())
}

func (h *Handler) handleShutdown(w io.Writer) error {
	if h.callbacks.Shutdown == nil {
		return writeLine(w, map[string]string{"error": "shutdown unavailable"})
	}
	if err := h.callbacks.Shutdown(); err != nil {
		return writeLine(w, map[string]string{"error": err.Error()})
	}
	return writeLine(w, map[string]string{"status": "shutting down"})
}

func (h *Handler) handleReload(w io.Writer) error {
	if h.callbacks.Reload == nil {
		return writeLine(w, map[string]string{"error": "reload unsupported"})
	}
	if err := h.callbacks.Reload(); err != nil {
		return writeLine(w, map[string]string{"error": err.Error()})
	}
	return writeLine(w, map[string]string{"status": "reloaded"})
}

func (h *Handler) handleDrain(w io.Writer) error {
	if h.callbacks.Drain == nil {
		return writeLine(w, map[string]string{"error": "drain unsupported"})
	}
	if err := h.callbacks.Drain(); err != nil {
		return writeLine(w, map[string]string{"error": err.Error()})
	}
	return writeLine(w, map[string]string{"status": "draining"})
}

func writeLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
