package kv

import (
	"testing"
	"time"

	"github.com/hivellm/synap/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Config{ShardCount: 16})
	t.Cleanup(s.Close)
	return s
}

func TestSetAndGet(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Set("foo", []byte("bar"), SetOptions{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("foo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "bar" {
		t.Errorf("Get(foo) = %q, want %q", got, "bar")
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("missing")
	if !domain.IsDomainError(err, domain.ErrKeyNotFound.Code) {
		t.Fatalf("Get(missing) err = %v, want ErrKeyNotFound", err)
	}
}

func TestSetOnlyIfNotExists(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("v1"), SetOptions{})

	stored, err := s.Set("k", []byte("v2"), SetOptions{OnlyIfNotExists: true})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if stored {
		t.Fatal("Set with OnlyIfNotExists overwrote an existing key")
	}
	got, _ := s.Get("k")
	if string(got) != "v1" {
		t.Errorf("value changed to %q, want unchanged %q", got, "v1")
	}
}

func TestWrongTypeError(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("v"), SetOptions{})

	if _, err := s.HGet("k", "field"); !domain.IsDomainError(err, domain.ErrWrongType.Code) {
		t.Fatalf("HGet on string key err = %v, want ErrWrongType", err)
	}
}

func TestExpireAndTTL(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("v"), SetOptions{})

	ok, err := s.Expire("k", int64(50*time.Millisecond))
	if err != nil || !ok {
		t.Fatalf("Expire = (%v, %v)", ok, err)
	}

	ttl, err := s.TTL("k")
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > int64(50*time.Millisecond) {
		t.Errorf("TTL = %d, want in (0, %d]", ttl, int64(50*time.Millisecond))
	}

	time.Sleep(100 * time.Millisecond)
	if _, err := s.Get("k"); !domain.IsDomainError(err, domain.ErrKeyNotFound.Code) {
		t.Fatalf("Get after expiry err = %v, want ErrKeyNotFound", err)
	}
}

func TestPersistRemovesTTL(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", []byte("v"), SetOptions{TTL: int64(time.Hour)})

	if !s.Persist("k") {
		t.Fatal("Persist returned false for a key with a TTL")
	}
	ttl, err := s.TTL("k")
	if err != nil || ttl != -1 {
		t.Errorf("TTL after Persist = (%d, %v), want (-1, nil)", ttl, err)
	}
}

func TestIncr(t *testing.T) {
	s := newTestStore(t)

	v, err := s.Incr("counter", 1)
	if err != nil || v != 1 {
		t.Fatalf("Incr = (%d, %v), want (1, nil)", v, err)
	}
	v, err = s.Incr("counter", 5)
	if err != nil || v != 6 {
		t.Fatalf("Incr = (%d, %v), want (6, nil)", v, err)
	}
}

func TestDel(t *testing.T) {
	s := newTestStore(t)
	s.Set("a", []byte("1"), SetOptions{})
	s.Set("b", []byte("2"), SetOptions{})

	n := s.Del("a", "b", "missing")
	if n != 2 {
		t.Errorf("Del removed %d keys, want 2", n)
	}
	if s.Exists("a") || s.Exists("b") {
		t.Error("keys still exist after Del")
	}
}

func TestVersionSurvivesDeleteAndExpiry(t *testing.T) {
	s := newTestStore(t)

	if v := s.Version("never-existed"); v != 0 {
		t.Errorf("Version(never-existed) = %d, want 0", v)
	}

	s.Set("a", []byte("1"), SetOptions{})
	created := s.Version("a")
	if created == 0 {
		t.Fatal("Version(a) after Set = 0, want nonzero")
	}

	s.Del("a")
	if v := s.Version("a"); v != created {
		t.Errorf("Version(a) after Del = %d, want %d (tombstoned, not reset to 0)", v, created)
	}

	s.Set("b", []byte("1"), SetOptions{TTL: int64(20 * time.Millisecond)})
	expiring := s.Version("b")
	time.Sleep(100 * time.Millisecond)
	if s.Exists("b") {
		t.Fatal("key b should have expired")
	}
	if v := s.Version("b"); v != expiring {
		t.Errorf("Version(b) after expiry = %d, want %d (tombstoned, not reset to 0)", v, expiring)
	}
}

func TestMGetMSet(t *testing.T) {
	s := newTestStore(t)
	if err := s.MSet(map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatalf("MSet: %v", err)
	}
	vals, err := s.MGet([]string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("MGet: %v", err)
	}
	if string(vals[0]) != "1" || string(vals[1]) != "2" || vals[2] != nil {
		t.Errorf("MGet = %v", vals)
	}
}

func TestHashOps(t *testing.T) {
	s := newTestStore(t)

	isNew, err := s.HSet("h", "f1", []byte("v1"))
	if err != nil || !isNew {
		t.Fatalf("HSet = (%v, %v)", isNew, err)
	}
	v, err := s.HGet("h", "f1")
	if err != nil || string(v) != "v1" {
		t.Fatalf("HGet = (%q, %v)", v, err)
	}
	n, err := s.HLen("h")
	if err != nil || n != 1 {
		t.Fatalf("HLen = (%d, %v)", n, err)
	}
	removed, err := s.HDel("h", "f1")
	if err != nil || removed != 1 {
		t.Fatalf("HDel = (%d, %v)", removed, err)
	}
	if s.Exists("h") {
		t.Error("hash key should be removed once empty")
	}
}

func TestListOps(t *testing.T) {
	s := newTestStore(t)

	s.RPush("l", []byte("a"))
	s.RPush("l", []byte("b"))
	s.LPush("l", []byte("z"))

	vals, err := s.LRange("l", 0, -1)
	if err != nil {
		t.Fatalf("LRange: %v", err)
	}
	want := []string{"z", "a", "b"}
	for i, v := range vals {
		if string(v) != want[i] {
			t.Errorf("LRange[%d] = %q, want %q", i, v, want[i])
		}
	}

	v, err := s.LPop("l")
	if err != nil || string(v) != "z" {
		t.Fatalf("LPop = (%q, %v), want (z, nil)", v, err)
	}
}

func TestSetIntersect(t *testing.T) {
	s := newTestStore(t)
	s.SAdd("s1", "a", "b", "c")
	s.SAdd("s2", "b", "c", "d")

	inter, err := s.SInter("s1", "s2")
	if err != nil {
		t.Fatalf("SInter: %v", err)
	}
	if len(inter) != 2 {
		t.Errorf("SInter = %v, want 2 members", inter)
	}
}

func TestSortedSetRange(t *testing.T) {
	s := newTestStore(t)
	s.ZAdd("z", "a", 1)
	s.ZAdd("z", "b", 3)
	s.ZAdd("z", "c", 2)

	members, scores, err := s.ZRange("z", 0, -1)
	if err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	wantMembers := []string{"a", "c", "b"}
	for i, m := range members {
		if m != wantMembers[i] {
			t.Errorf("ZRange members = %v, want %v", members, wantMembers)
		}
	}
	if scores[0] != 1 || scores[2] != 3 {
		t.Errorf("ZRange scores = %v", scores)
	}
}

func TestHyperLogLogApproximation(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 1000; i++ {
		_, err := s.PFAdd("hll", string(rune(i)))
		if err != nil {
			t.Fatalf("PFAdd: %v", err)
		}
	}
	count, err := s.PFCount("hll")
	if err != nil {
		t.Fatalf("PFCount: %v", err)
	}
	if count < 900 || count > 1100 {
		t.Errorf("PFCount = %d, want within 10%% of 1000", count)
	}
}

func TestBitmapOps(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SetBit("bm", 7, 1); err != nil {
		t.Fatalf("SetBit: %v", err)
	}
	bit, err := s.GetBit("bm", 7)
	if err != nil || bit != 1 {
		t.Fatalf("GetBit = (%d, %v), want (1, nil)", bit, err)
	}
	count, err := s.BitCount("bm")
	if err != nil || count != 1 {
		t.Fatalf("BitCount = (%d, %v), want (1, nil)", count, err)
	}
}

func TestGeoDistance(t *testing.T) {
	s := newTestStore(t)
	s.GeoAdd("geo", "a", 13.361389, 38.115556)
	s.GeoAdd("geo", "b", 15.087269, 37.502669)

	dist, found, err := s.GeoDist("geo", "a", "b")
	if err != nil || !found {
		t.Fatalf("GeoDist = (%v, %v, %v)", dist, found, err)
	}
	// Known reference distance is ~166274 meters; allow generous tolerance
	// for the coarse geohash-score rounding.
	if dist < 150000 || dist > 185000 {
		t.Errorf("GeoDist = %f meters, want ~166274", dist)
	}
}

func TestScanCoversAllKeys(t *testing.T) {
	s := newTestStore(t)
	want := map[string]bool{}
	for i := 0; i < 250; i++ {
		k := string(rune('a')) + string(rune(i))
		s.Set(k, []byte("v"), SetOptions{})
		want[k] = true
	}

	var cursor Cursor
	seen := map[string]bool{}
	for {
		res := s.Scan(cursor)
		for _, k := range res.Keys {
			seen[k] = true
		}
		if res.Cursor.Done(s.shardCount) {
			break
		}
		cursor = res.Cursor
	}
	if len(seen) != len(want) {
		t.Errorf("Scan saw %d keys, want %d", len(seen), len(want))
	}
}
