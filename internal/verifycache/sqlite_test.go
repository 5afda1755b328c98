package verifycache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetMissThenPutThenGetHit(t *testing.T) {
	c := openTestCache(t)
	key := HashKey("abs", "int abs(int x) { ... }")

	if c.Exists(key) {
		t.Fatal("a fresh cache should not already contain the key")
	}
	if _, ok, err := c.Get(key); err != nil || ok {
		t.Fatalf("Get on a miss: ok=%v err=%v", ok, err)
	}

	want := Result{OK: true, CheckedAt: time.Now().UTC().Truncate(time.Second)}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !c.Exists(key) {
		t.Fatal("Exists should report true after Put")
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if got.OK != want.OK || !got.CheckedAt.Equal(want.CheckedAt) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestPutOverwritesExistingKey(t *testing.T) {
	c := openTestCache(t)
	key := HashKey("f", "body v1")

	c.Put(key, Result{OK: false, Message: "type mismatch"})
	c.Put(key, Result{OK: true})

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !got.OK || got.Message != "" {
		t.Errorf("second Put should have overwritten the first, got %+v", got)
	}
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c := openTestCache(t)
	key := HashKey("f", "body")
	c.Put(key, Result{OK: true})

	if err := c.Invalidate(key); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if c.Exists(key) {
		t.Error("key should be gone after Invalidate")
	}
}

func TestClearRemovesEveryEntryAndResetsCounters(t *testing.T) {
	c := openTestCache(t)
	c.Put(HashKey("f", "body1"), Result{OK: true})
	c.Put(HashKey("g", "body2"), Result{OK: true})
	c.Get(HashKey("f", "body1"))

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	stats := c.Stats()
	if stats.Entries != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("stats after Clear = %+v, want all zero", stats)
	}
	if c.Exists(HashKey("f", "body1")) {
		t.Error("Exists should report false after Clear")
	}
}

func TestHashKeyDiffersOnContractOnlyChange(t *testing.T) {
	a := HashKey("f", "requires x > 0; body")
	b := HashKey("f", "requires x >= 0; body")
	if a == b {
		t.Error("a contract-only change must produce a different key")
	}
}
