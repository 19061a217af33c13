// Copyright (c) 2026 KyleSpence All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package dnscheck

import (
	"container/list"
	"sync"
	"time"
)

// Cache TTL and capacity bounds for the built-in in-memory cache.
const (
	cacheMaxEntries = 50
	cacheMinTTL     = 30 * time.Second
	cacheMaxTTL     = 600 * time.Second
	cacheDefaultTTL = 300 * time.Second
)

// Cache defines an interface for caching record sets.
// Implement this interface to provide a custom cache backend
// (e.g. Redis, memcached) via the [WithCache] option.
type Cache interface {
	// Get retrieves a cached record set by key.
	// Returns the set and true if found and not expired,
	// or nil and false otherwise.
	Get(key string) (*RecordSet, bool)

	// Set stores a record set in the cache. The implementation decides
	// the entry lifetime; the built-in cache derives it from the
	// record TTLs in the set.
	Set(key string, rs *RecordSet)

	// Flush removes all entries from the cache.
	Flush()
}

// CacheStatser is optionally implemented by caches that track
// hit/miss counters. The built-in cache implements it.
type CacheStatser interface {
	Stats() CacheStats
}

// cacheEntry holds a cached record set with its expiration time and its
// position in the insertion-order list.
type cacheEntry struct {
	set       *RecordSet
	cachedAt  time.Time
	expiresAt time.Time
	elem      *list.Element
}

// memoryCache is the default bounded in-memory cache. Entries expire
// lazily on read, and when the capacity bound is reached the entry
// inserted earliest is evicted first (insertion order, not LRU).
type memoryCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      *list.List // front = oldest inserted
	maxEntries int

	hits   uint64
	misses uint64
}

// newMemoryCache creates an in-memory cache bounded to maxEntries.
func newMemoryCache(maxEntries int) *memoryCache {
	if maxEntries <= 0 {
		maxEntries = cacheMaxEntries
	}
	return &memoryCache{
		entries:    make(map[string]*cacheEntry),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get retrieves a cached record set by key.
// Expired entries are removed lazily and count as misses.
func (c *memoryCache) Get(key string) (*RecordSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		c.order.Remove(entry.elem)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.set, true
}

// Set stores a record set. The entry TTL is the minimum record TTL found
// in the set, clamped to [30s, 600s], or a 300s default when the set has
// no records.
func (c *memoryCache) Set(key string, rs *RecordSet) {
	if rs == nil {
		return
	}

	now := time.Now()
	entry := &cacheEntry{
		set:       rs,
		cachedAt:  now,
		expiresAt: now.Add(recordSetTTL(rs)),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.entries[key]; ok {
		c.order.Remove(existing.elem)
		delete(c.entries, key)
	}

	// Evict the oldest-inserted entry when at capacity.
	for len(c.entries) >= c.maxEntries {
		front := c.order.Front()
		if front == nil {
			break
		}
		c.order.Remove(front)
		delete(c.entries, front.Value.(string))
	}

	entry.elem = c.order.PushBack(key)
	c.entries[key] = entry
}

// Flush removes all entries. Hit/miss counters are preserved.
func (c *memoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.order = list.New()
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *memoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// recordSetTTL derives a cache lifetime from the minimum per-record TTL
// across all answer records in the set, clamped to [cacheMinTTL,
// cacheMaxTTL]. Sets without any records fall back to cacheDefaultTTL.
func recordSetTTL(rs *RecordSet) time.Duration {
	ttl := cacheDefaultTTL
	found := false

	for _, res := range rs.Results {
		for _, rec := range res.Records {
			d := time.Duration(rec.TTL) * time.Second
			if !found || d < ttl {
				ttl = d
				found = true
			}
		}
	}

	if ttl < cacheMinTTL {
		return cacheMinTTL
	}
	if ttl > cacheMaxTTL {
		return cacheMaxTTL
	}
	return ttl
}
