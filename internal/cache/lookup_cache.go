// Package cache holds short-lived copies of the engine's lookup lists
// (categories, brands, units) so repeated dropdown opens do not round-trip.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	values    []string
	expiresAt time.Time
}

// LookupCache is a thread-safe TTL cache for string lists.
type LookupCache struct {
	items         map[string]entry
	mutex         sync.RWMutex
	ttl           time.Duration
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// NewLookupCache creates a cache with the given TTL and cleanup interval.
func NewLookupCache(ttl, cleanupInterval time.Duration) *LookupCache {
	c := &LookupCache{
		items:       make(map[string]entry),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	c.cleanupTicker = time.NewTicker(cleanupInterval)
	go c.cleanupExpiredEntries()

	slog.Info("Lookup cache initialized",
		"ttl", ttl.String(),
		"cleanup_interval", cleanupInterval.String())

	return c
}

// Set stores a list under key. The stored slice is copied so later mutation
// by the caller cannot leak into cached reads.
func (c *LookupCache) Set(key string, values []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	copied := make([]string, len(values))
	copy(copied, values)
	c.items[key] = entry{values: copied, expiresAt: time.Now().Add(c.ttl)}

	slog.Debug("Lookup cache entry set", "key", key, "count", len(values))
}

// Get returns the cached list for key if present and fresh.
func (c *LookupCache) Get(key string) ([]string, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.items[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false
	}

	out := make([]string, len(e.values))
	copy(out, e.values)
	return out, true
}

// Invalidate drops a single key, forcing the next read to refetch.
func (c *LookupCache) Invalidate(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.items, key)
	slog.Debug("Lookup cache entry invalidated", "key", key)
}

// Stop ends the cleanup goroutine.
func (c *LookupCache) Stop() {
	if c.cleanupTicker != nil {
		c.cleanupTicker.Stop()
	}
	close(c.stopCleanup)
	slog.Info("Lookup cache stopped")
}

func (c *LookupCache) cleanupExpiredEntries() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.performCleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *LookupCache) performCleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}

	if removed > 0 {
		slog.Debug("Lookup cache cleanup completed",
			"expired_entries", removed,
			"remaining_entries", len(c.items))
	}
}
