package stream

import (
	"testing"
	"time"
)

func TestPublishConsume(t *testing.T) {
	m := NewManager(ManagerConfig{})

	off0 := m.Publish("chat", "msg", []byte("hi"), "p1")
	off1 := m.Publish("chat", "msg", []byte("there"), "p1")
	if off0 != 0 || off1 != 1 {
		t.Fatalf("offsets = (%d, %d), want (0, 1)", off0, off1)
	}

	events, err := m.Consume("chat", 0, 10)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(events) != 2 || string(events[0].Data) != "hi" || string(events[1].Data) != "there" {
		t.Fatalf("Consume = %+v", events)
	}
}

func TestConsumeMissingRoom(t *testing.T) {
	m := NewManager(ManagerConfig{})
	if _, err := m.Consume("missing", 0, 10); err == nil {
		t.Fatal("Consume on missing room should error")
	}
}

func TestRetentionMaxCount(t *testing.T) {
	m := NewManager(ManagerConfig{DefaultRetention: Retention{MaxCount: 2}})
	m.Publish("r", "t", []byte("1"), "")
	m.Publish("r", "t", []byte("2"), "")
	m.Publish("r", "t", []byte("3"), "")

	r, _ := m.Get("r")
	if r.HeadOffset() != 1 {
		t.Errorf("HeadOffset = %d, want 1 after retaining only the last 2 events", r.HeadOffset())
	}
	events, _ := m.Consume("r", 0, 10)
	if len(events) != 2 || string(events[0].Data) != "2" {
		t.Fatalf("Consume after retention = %+v", events)
	}
}

func TestObserveDeliversBacklogThenLive(t *testing.T) {
	m := NewManager(ManagerConfig{})
	m.Publish("r", "t", []byte("backlog"), "")

	backlog, out := m.Observe("r", "sub1", 0)
	if len(backlog) != 1 || string(backlog[0].Data) != "backlog" {
		t.Fatalf("backlog = %+v, want one event", backlog)
	}

	m.Publish("r", "t", []byte("live"), "")
	select {
	case ev := <-out:
		if string(ev.Data) != "live" {
			t.Errorf("live event = %q, want live", ev.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live event")
	}
}
