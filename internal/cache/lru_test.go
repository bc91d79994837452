package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewLRUCache[string](4, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("empty cache should miss")
	}

	c.Set("a", "alpha")
	got, found := c.Get("a")
	if !found || got != "alpha" {
		t.Errorf("Get(a) = %q, %v", got, found)
	}

	c.Set("a", "alpha2")
	if got, _ := c.Get("a"); got != "alpha2" {
		t.Errorf("overwrite lost: %q", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, found := c.Get("b"); found {
		t.Error("least recently used entry should be evicted")
	}
	if _, found := c.Get("a"); !found {
		t.Error("recently used entry should survive")
	}
	if _, found := c.Get("c"); !found {
		t.Error("new entry should be present")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewLRUCache[int](4, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry should miss")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRUCache[int](8, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](8, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("deleted entry should miss")
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("Size after purge = %d, want 0", c.Size())
	}
	if _, found := c.Get("b"); found {
		t.Error("purged entry should miss")
	}

	// Cache stays usable after a purge.
	c.Set("d", 4)
	if got, found := c.Get("d"); !found || got != 4 {
		t.Errorf("post-purge Set/Get = %d, %v", got, found)
	}
}
