package command

import (
	"net/http"
	"testing"
)

func TestQueueCommand(t *testing.T) {
	cmd := QueueCommand()
	if cmd == nil {
		t.Fatal("QueueCommand returned nil")
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, name := range []string{"publish", "consume", "ack", "nack"} {
		if !subNames[name] {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestQueuePublish_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": "req-1",
			"payload":    map[string]any{"message_id": "m1"},
		})
	})

	ctx := testContext(server, "jobs", "work")
	if err := queuePublish(ctx); err != nil {
		t.Errorf("queuePublish() error = %v", err)
	}
}

func TestQueuePublish_MissingArgs(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	ctx := testContext(server, "jobs")
	if err := queuePublish(ctx); err == nil {
		t.Error("queuePublish() with no payload should error")
	}
}

func TestQueueConsume_Found(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	msg := sampleQueueMessage()
	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": "req-1",
			"payload":    msg,
		})
	})

	ctx := testContext(server, "jobs", "worker-1")
	if err := queueConsume(ctx); err != nil {
		t.Errorf("queueConsume() error = %v", err)
	}
}

func TestQueueAck_MissingArgs(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	ctx := testContext(server, "jobs")
	if err := queueAck(ctx); err == nil {
		t.Error("queueAck() with no message id should error")
	}
}

func TestQueueNack_Success(t *testing.T) {
	server := newMockServer()
	defer server.Close()

	server.handle("/v1/command", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": "req-1",
			"payload":    map[string]any{},
		})
	})

	ctx := testContext(server, "jobs", "m1")
	if err := queueNack(ctx); err != nil {
		t.Errorf("queueNack() error = %v", err)
	}
}
