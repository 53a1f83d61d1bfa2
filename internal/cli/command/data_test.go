package command

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestDataCommand_Name(t *testing.T) {
	cmd := DataCommand()
	if cmd == nil {
		t.Fatal("DataCommand returned nil")
	}
	if cmd.Name != "data" {
		t.Errorf("Name = %q, want %q", cmd.Name, "data")
	}
}

func TestDataGet_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		var env map[string]any
		_ = json.NewDecoder(r.Body).Decode(&env)
		if env["command"] != "kv.get" {
			t.Errorf("command = %v, want kv.get", env["command"])
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": env["request_id"],
			"payload":    kvGetResponse{Value: "v1"},
		})
	})

	ctx := testContext(server, "k1")
	if err := dataGet(ctx); err != nil {
		t.Errorf("dataGet() error = %v", err)
	}
}

func TestDataGet_MissingKey(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	ctx := testContext(server)
	if err := dataGet(ctx); err == nil {
		t.Error("dataGet() with no key should error")
	}
}

func TestDataGet_NotFound(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    false,
			"request_id": "req-1",
			"error":      map[string]string{"code": "SYN-KV-4040", "message": "key not found"},
		})
	})

	ctx := testContext(server, "missing")
	if err := dataGet(ctx); err == nil {
		t.Error("dataGet() on missing key should error")
	}
}

func TestDataSet_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		var env map[string]any
		_ = json.NewDecoder(r.Body).Decode(&env)
		payload, _ := env["payload"].(map[string]any)
		if payload["key"] != "k1" || payload["value"] != "v1" {
			t.Errorf("payload = %v, want key=k1 value=v1", payload)
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": env["request_id"],
			"payload":    map[string]any{"stored": true},
		})
	})

	ctx := testContext(server, "k1", "v1")
	if err := dataSet(ctx); err != nil {
		t.Errorf("dataSet() error = %v", err)
	}
}

func TestDataSet_MissingArgs(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	ctx := testContext(server, "k1")
	if err := dataSet(ctx); err == nil {
		t.Error("dataSet() with only a key should error")
	}
}

func TestDataDel_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": "req-1",
			"payload":    map[string]any{"deleted": 1},
		})
	})

	ctx := testContext(server, "k1")
	if err := dataDel(ctx); err != nil {
		t.Errorf("dataDel() error = %v", err)
	}
}

func TestDataExpire_InvalidSeconds(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	ctx := testContext(server, "k1", "not-a-number")
	if err := dataExpire(ctx); err == nil {
		t.Error("dataExpire() with non-numeric seconds should error")
	}
}
