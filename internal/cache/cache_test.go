package cache

import (
	"errors"
	"testing"
	"time"
)

func TestFetchMemoizes(t *testing.T) {
	c := New[int](0, 0)

	calls := 0
	fn := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.Fetch("k", fn)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestFetchDoesNotCacheErrors(t *testing.T) {
	c := New[int](0, 0)

	calls := 0
	fn := func() (int, error) {
		calls++
		return 0, errors.New("upstream down")
	}

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch("k", fn); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", calls)
	}
}

func TestExpiry(t *testing.T) {
	c := New[string](time.Minute, 10)

	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should be fresh")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be purged, len=%d", c.Len())
	}
}

func TestOldestEviction(t *testing.T) {
	c := New[int](time.Minute, 2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if _, ok := c.Get("a"); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("entry b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("entry c should survive")
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
}
