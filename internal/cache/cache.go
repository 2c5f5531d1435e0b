// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a small TTL cache for derived data such as
// rendered content HTML.
package cache

import (
	"context"
	"time"
)

// Cache defines the interface for cache implementations.
// All implementations must be thread-safe.
type Cache interface {
	// Get returns the value for key, or ErrCacheMiss when it is absent or
	// expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A zero ttl means the cache's default TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Stats reports cache usage.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Evictions int64
	Items     int
	Size      int64 // Approximate size of stored values in bytes
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found in cache or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)
