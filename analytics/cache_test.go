package analytics

import (
	"testing"
	"time"
)

func TestCacheReturnsValueWithinTtl(t *testing.T) {
	c := NewCache(5 * time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatal("expected cached value within TTL")
	}
}

func TestCacheExpiresAfterTtl(t *testing.T) {
	c := NewCache(5 * time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", 42)
	now = now.Add(5*time.Minute + time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected the entry to expire")
	}
	// Expired entries are dropped, not resurrected.
	now = now.Add(-2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entries must not come back")
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := NewCache(time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("invalidated entry still present")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("unrelated entry lost")
	}
	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Fatal("clear must drop everything")
	}
}

func TestCacheMissOnUnknownKey(t *testing.T) {
	c := NewCache(time.Hour)
	if _, ok := c.Get("nope"); ok {
		t.Fatal("unexpected hit")
	}
}
