// Package cache is a tiny in-process TTL cache. It backs poll-heavy reads
// (the users list behind the daily counts, meme lookups) where a stale value
// for a few seconds is fine and a network cache would be overkill.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	val       any
	expiresAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value when present and fresh. Expired entries are
// evicted lazily here; there is no background sweeper.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	c.entries[key] = entry{val: val, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete drops a key so the next Get refetches. Used to invalidate the users
// list after a default-response write.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
