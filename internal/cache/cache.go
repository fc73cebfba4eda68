package cache

import (
	"sync"
	"time"
)

// Cache is an in-process map whose entries expire ttl after they were set.
// Expired entries are dropped lazily, on the read that finds them.
type Cache[V any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry[V]
}

type entry[V any] struct {
	val     V
	expires time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return zero, false
	}
	if now.Before(e.expires) {
		return e.val, true
	}

	c.mu.Lock()
	// a concurrent Set may have refreshed the key since the read above
	if cur, ok := c.entries[key]; ok && !now.Before(cur.expires) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return zero, false
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{val: val, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
