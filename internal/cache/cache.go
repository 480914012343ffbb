// Package cache is a small TTL cache with insertion-order eviction.
package cache

import (
	"sync"
	"time"
)

// entry wraps a cached value with expiry and insertion order tracking.
type entry[V any] struct {
	value     V
	expiry    time.Time
	insertIdx int64
}

// Cache maps string keys to values for a fixed TTL. When full, the oldest
// insertion is evicted. maxEntries <= 0 means unbounded. Safe for
// concurrent use.
type Cache[V any] struct {
	mu         sync.RWMutex
	items      map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// New creates a Cache with the given TTL and max entry count.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		items:      make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a cached value if found and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}

	if c.now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Set stores a value. Evicts the oldest entry if at capacity.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[V]{
		value:     value,
		expiry:    c.now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	// If key already exists, update in place (no capacity change)
	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge removes every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
