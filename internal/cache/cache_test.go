package cache

import (
	"io"
	"testing"
	"time"

	"homeboard/internal/log"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRU[string](10, time.Minute).WithClock(clk.now)

	c.Set("k", "v")
	clk.t = clk.t.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}

	c.Set("other", "x")
	clk.t = clk.t.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("hits=%d misses=%d", hits, misses)
	}
}

func TestLRUOverwriteAndDelete(t *testing.T) {
	c := NewLRU[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Fatalf("a = %d", v)
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be gone")
	}
}

func TestManagerSweep(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := NewLRU[int](10, time.Second).WithClock(clk.now)
	c.Set("a", 1)
	c.Set("b", 2)

	m := NewManager(log.New(log.Config{Output: io.Discard}))
	m.Register(c)

	if n := m.Sweep(); n != 0 {
		t.Fatalf("nothing should expire yet, removed %d", n)
	}
	clk.t = clk.t.Add(time.Hour)
	if n := m.Sweep(); n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}

	m.Start(time.Hour)
	m.Start(time.Hour)
	m.Stop()
	m.Stop()
}
