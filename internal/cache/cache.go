// Package cache provides a bounded, time-boxed memoization cache used by the
// upstream metadata clients.
package cache

import (
	"sync"
	"time"
)

const (
	DefaultTTL        = 5 * time.Minute
	DefaultMaxEntries = 100
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a keyed memo cache with a TTL and a capacity bound. When the bound
// is exceeded the oldest entry (by insertion) is evicted.
type Cache[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry[V]
	order      []string
	now        func() time.Time
}

// New creates a cache. Zero values select the defaults.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry[V]),
		now:        time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		c.remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}

	for len(c.entries) > c.maxEntries && len(c.order) > 0 {
		c.remove(c.order[0])
	}
}

// Fetch returns the cached value for key, or runs fn and caches its result.
// A failed fn is not cached.
func (c *Cache[V]) Fetch(key string, fn func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, v)
	return v, nil
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove assumes c.mu is held.
func (c *Cache[V]) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
