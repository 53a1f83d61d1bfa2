package txn

import (
	"testing"

	"github.com/hivellm/synap/internal/engine/kv"
)

func TestExecAppliesQueuedOps(t *testing.T) {
	store := kv.New(kv.Config{ShardCount: 4})
	t.Cleanup(store.Close)

	coord := NewCoordinator(store)
	coord.Multi("c1")
	coord.Queue("c1", kv.TxnOp{Kind: kv.TxnSet, Key: "a", Value: []byte("1")})
	coord.Queue("c1", kv.TxnOp{Kind: kv.TxnIncr, Key: "counter", Delta: 5})

	results, aborted, err := coord.Exec("c1")
	if err != nil || aborted {
		t.Fatalf("Exec = (%v, %v, %v)", results, aborted, err)
	}

	v, _ := store.Get("a")
	if string(v) != "1" {
		t.Errorf("a = %q, want 1", v)
	}
	if results[1].Int != 5 {
		t.Errorf("counter result = %d, want 5", results[1].Int)
	}
}

func TestExecAbortsOnWatchedKeyChanged(t *testing.T) {
	store := kv.New(kv.Config{ShardCount: 4})
	t.Cleanup(store.Close)

	store.Set("watched", []byte("v0"), kv.SetOptions{})

	coord := NewCoordinator(store)
	coord.Watch("c1", "watched")

	// A concurrent writer changes the watched key before EXEC.
	store.Set("watched", []byte("v1"), kv.SetOptions{})

	coord.Multi("c1")
	coord.Queue("c1", kv.TxnOp{Kind: kv.TxnSet, Key: "a", Value: []byte("should-not-apply")})

	_, aborted, err := coord.Exec("c1")
	if err != nil || !aborted {
		t.Fatalf("Exec = (aborted=%v, err=%v), want aborted=true", aborted, err)
	}
	if store.Exists("a") {
		t.Error("queued op applied despite aborted transaction")
	}
}

func TestExecAbortsWhenWatchedKeyWasAbsentThenCreatedThenDeleted(t *testing.T) {
	store := kv.New(kv.Config{ShardCount: 4})
	t.Cleanup(store.Close)

	coord := NewCoordinator(store)
	// "watched" doesn't exist yet: baseline version is 0.
	coord.Watch("c1", "watched")

	// A concurrent writer creates then deletes the key before EXEC. Without
	// tombstoning, the key's version would read back as 0 again, making this
	// indistinguishable from "nothing happened".
	store.Set("watched", []byte("v1"), kv.SetOptions{})
	store.Del("watched")

	coord.Multi("c1")
	coord.Queue("c1", kv.TxnOp{Kind: kv.TxnSet, Key: "a", Value: []byte("should-not-apply")})

	_, aborted, err := coord.Exec("c1")
	if err != nil || !aborted {
		t.Fatalf("Exec = (aborted=%v, err=%v), want aborted=true", aborted, err)
	}
	if store.Exists("a") {
		t.Error("queued op applied despite aborted transaction")
	}
}

func TestDiscardClearsQueue(t *testing.T) {
	store := kv.New(kv.Config{ShardCount: 4})
	t.Cleanup(store.Close)

	coord := NewCoordinator(store)
	coord.Multi("c1")
	coord.Queue("c1", kv.TxnOp{Kind: kv.TxnSet, Key: "a", Value: []byte("x")})
	coord.Discard("c1")

	if _, _, err := coord.Exec("c1"); err == nil {
		t.Fatal("Exec after Discard without a new MULTI should error")
	}
}
