package cache

import (
	"testing"
	"time"
)

func TestLRUEviction(t *testing.T) {
	c := NewLRU[string](2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3") // evicts a

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry survived eviction")
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Fatalf("b = %q ok=%v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d, want 2", c.Size())
	}
}

func TestLRURecencyOnGet(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")      // a becomes most recent
	c.Set("c", 3)   // evicts b

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry evicted")
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](10, time.Millisecond)
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expired entry returned")
	}
	c.Set("b", 2)
	time.Sleep(5 * time.Millisecond)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d after cleanup, want 0", c.Size())
	}
}

func TestChartCacheVersioning(t *testing.T) {
	c := NewChartCache(10, time.Minute)
	c.Put("u1", 1, []byte("v1"))
	c.Put("u1", 2, []byte("v2"))

	if png, ok := c.Get("u1", 2); !ok || string(png) != "v2" {
		t.Fatalf("v2 = %q ok=%v", png, ok)
	}
	// Prior versions stay addressable until evicted.
	if png, ok := c.Get("u1", 1); !ok || string(png) != "v1" {
		t.Fatalf("v1 = %q ok=%v", png, ok)
	}
	if _, ok := c.Get("u2", 1); ok {
		t.Fatal("other user's key resolved")
	}
}
