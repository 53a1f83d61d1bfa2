package localserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestHandler_Status(t *testing.T) {
	h := NewHandler(Callbacks{
		Status: func() StatusReport {
			return StatusReport{Version: "1.0.0", Uptime: "1h0m0s"}
		},
	})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "status", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var got StatusReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", got.Version)
	}
}

func TestHandler_Status_Unavailable(t *testing.T) {
	h := NewHandler(Callbacks{})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "status", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("unavailable")) {
		t.Errorf("response = %q, want an unavailable error", buf.String())
	}
}

func TestHandler_Shutdown_InvokesCallback(t *testing.T) {
	called := false
	h := NewHandler(Callbacks{
		Shutdown: func() error {
			called = true
			return nil
		},
	})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "shutdown", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !called {
		t.Error("shutdown callback was not invoked")
	}
}

func TestHandler_Shutdown_CallbackError(t *testing.T) {
	h := NewHandler(Callbacks{
		Shutdown: func() error { return errors.New("boom") },
	})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "shutdown", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Errorf("response = %q, want the callback error", buf.String())
	}
}

func TestHandler_Reload_Unsupported(t *testing.T) {
	h := NewHandler(Callbacks{})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "reload", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("unsupported")) {
		t.Errorf("response = %q, want unsupported error", buf.String())
	}
}

func TestHandler_UnknownCommand(t *testing.T) {
	h := NewHandler(Callbacks{})

	var buf bytes.Buffer
	if err := h.Execute(&buf, "bogus", nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("unknown command")) {
		t.Errorf("response = %q, want unknown command error", buf.String())
	}
}
