package memcache

import (
	"sync"
	"time"
)

// Clock abstracts time.Now so TTL expiry can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is a process-wide in-memory response cache with lazy TTL eviction.
// Entries are only checked for expiry on read; there is no background sweep,
// so the map can grow unbounded. Concurrent writers for the same key are
// last-writer-wins, which is acceptable because values for a given key are
// interchangeable within the TTL window.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry
}

// New creates a cache with the given TTL. A nil clock falls back to the
// system clock.
func New(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock()
	}
	return &Cache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value for key if one exists and is younger than the
// TTL. Expired entries are dropped on read and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have refreshed it.
		if cur, ok := c.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the current timestamp.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.clock.Now()}
	c.mu.Unlock()
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
