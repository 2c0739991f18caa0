// Package cache provides the process-wide in-memory cache used for query
// results and the category catalog.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is a TTL key/value cache backed by go-cache.
type Memory struct {
	items *gocache.Cache
}

// New creates a cache whose expired entries are purged every cleanupInterval.
// A non-positive interval disables the janitor; expired entries are still
// never returned.
func New(cleanupInterval time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

// Get returns the value for key if present and not expired.
func (m *Memory) Get(key string) (any, bool) {
	return m.items.Get(key)
}

// Set stores value under key for ttl. A non-positive ttl never expires.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.items.Set(key, value, ttl)
}

// Contains reports whether key holds an unexpired value.
func (m *Memory) Contains(key string) bool {
	_, ok := m.items.Get(key)
	return ok
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	m.items.Delete(key)
}

// Len returns the number of stored items, including expired ones not yet purged.
func (m *Memory) Len() int {
	return m.items.ItemCount()
}

// Flush drops every item.
func (m *Memory) Flush() {
	m.items.Flush()
}
