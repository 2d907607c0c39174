// Package infra holds the plumbing shared by every vendor: the HTTP
// client, a TTL cache and a rate limiter.
package infra

import (
	"sync"
	"time"
)

// pruneEvery is how many Sets pass between sweeps of expired entries.
const pruneEvery = 128

type cacheEntry struct {
	value   any
	expires time.Time
}

// Cache is an in-memory TTL cache safe for concurrent use. Expired
// entries are dropped on read and swept periodically on write.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	sets    int
}

// NewCache creates a cache whose entries live for ttl. A non-positive
// ttl disables it: Set is a no-op and Get always misses.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]cacheEntry), ttl: ttl}
}

// Get returns the live value for key.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return
	}
	now := time.Now()
	c.entries[key] = cacheEntry{value: value, expires: now.Add(c.ttl)}
	if c.sets++; c.sets%pruneEvery == 0 {
		c.prune(now)
	}
}

// CapTTL lowers the TTL to max when max is smaller. A non-positive max
// disables the cache and drops what it holds.
func (c *Cache) CapTTL(max time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if max < c.ttl {
		c.ttl = max
	}
	if c.ttl <= 0 {
		clear(c.entries)
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) prune(now time.Time) {
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}
