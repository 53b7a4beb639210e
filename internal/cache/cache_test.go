package cache

import (
	"testing"
	"time"
)

func TestQueryResultRoundTrip(t *testing.T) {
	c := New(DefaultConfig())
	c.SetQueryResult("cat dog", []string{"a0001", "b0002"})

	got, ok := c.GetQueryResult("cat dog")
	if !ok {
		t.Fatal("expected cache hit")
	}
	ids, ok := got.([]string)
	if !ok || len(ids) != 2 {
		t.Fatalf("got = %v", got)
	}
}

func TestGetMiss(t *testing.T) {
	c := New(DefaultConfig())
	if _, ok := c.Get("nope"); ok {
		t.Fatal("expected miss")
	}
	stats := c.GetStats()
	if stats.L1Misses == 0 || stats.L2Misses == 0 {
		t.Errorf("stats = %+v, expected misses recorded", stats)
	}
}

func TestL1Eviction(t *testing.T) {
	c := New(Config{L1MaxItems: 2, L1TTL: time.Minute, L2TTL: time.Minute})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to still be present")
	}
}

func TestInvalidate(t *testing.T) {
	c := New(DefaultConfig())
	c.SetQueryResult("foo", 42)
	c.Invalidate("foo")

	c.l1Mu.Lock()
	c.l1 = map[string]*item{}
	c.l1Mu.Unlock()

	if _, ok := c.GetQueryResult("foo"); ok {
		t.Error("expected invalidated entry to miss")
	}
}
