// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryCache is a thread-safe in-process cache with per-entry TTL and an
// optional entry limit. When the limit is reached, expired entries are
// dropped first and then the entry closest to expiry.
type MemoryCache struct {
	mu         sync.Mutex
	data       map[string]memoryEntry
	defaultTTL time.Duration
	maxEntries int
	now        func() time.Time

	stopCh    chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
	size      atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryOptions configures a MemoryCache.
type MemoryOptions struct {
	DefaultTTL      time.Duration
	MaxEntries      int           // 0 = unlimited
	CleanupInterval time.Duration // 0 = no background cleanup
}

// NewMemoryCache creates a MemoryCache. A background goroutine removes
// expired entries when CleanupInterval is set; Close stops it.
func NewMemoryCache(opts MemoryOptions) *MemoryCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = time.Hour
	}
	c := &MemoryCache{
		data:       make(map[string]memoryEntry),
		defaultTTL: opts.DefaultTTL,
		maxEntries: opts.MaxEntries,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
	if opts.CleanupInterval > 0 {
		go c.cleanupLoop(opts.CleanupInterval)
	}
	return c
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}

	c.mu.Lock()
	entry, ok := c.data[key]
	if ok && !c.now().Before(entry.expiresAt) {
		c.deleteLocked(key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, ErrCacheMiss
	}
	c.hits.Add(1)
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; exists {
		c.deleteLocked(key)
	} else if c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.makeRoomLocked()
	}

	c.data[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.size.Add(int64(len(stored)))
	c.sets.Add(1)
	return nil
}

// Delete removes a key from the cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	c.mu.Lock()
	c.deleteLocked(key)
	c.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine. Later calls fail with ErrCacheClosed.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.stopCh)
	})
	return nil
}

// Stats returns current cache statistics.
func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	items := len(c.data)
	c.mu.Unlock()

	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Sets:      c.sets.Load(),
		Evictions: c.evictions.Load(),
		Items:     items,
		Size:      c.size.Load(),
	}
}

func (c *MemoryCache) deleteLocked(key string) {
	if entry, ok := c.data[key]; ok {
		delete(c.data, key)
		c.size.Add(-int64(len(entry.value)))
	}
}

// makeRoomLocked frees at least one slot.
func (c *MemoryCache) makeRoomLocked() {
	if c.removeExpiredLocked() > 0 {
		return
	}
	var (
		victim string
		soonest time.Time
	)
	for key, entry := range c.data {
		if victim == "" || entry.expiresAt.Before(soonest) {
			victim, soonest = key, entry.expiresAt
		}
	}
	if victim != "" {
		c.deleteLocked(victim)
		c.evictions.Add(1)
	}
}

func (c *MemoryCache) removeExpiredLocked() int {
	now := c.now()
	removed := 0
	for key, entry := range c.data {
		if !now.Before(entry.expiresAt) {
			c.deleteLocked(key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.removeExpiredLocked()
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

var _ Cache = (*MemoryCache)(nil)
