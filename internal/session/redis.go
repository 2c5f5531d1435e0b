// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every session key.
const DefaultRedisPrefix = "marquee:session:"

// Redis connection defaults
const (
	redisPoolSize       = 10
	redisConnectTimeout = 5 * time.Second
	redisReadTimeout    = 3 * time.Second
	redisWriteTimeout   = 3 * time.Second
)

// NewRedisClient parses a redis:// URL, connects and pings the server.
func NewRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	opts.PoolSize = redisPoolSize
	opts.DialTimeout = redisConnectTimeout
	opts.ReadTimeout = redisReadTimeout
	opts.WriteTimeout = redisWriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

// NewRedisStore creates an scs store keeping session data in Redis under
// prefix, with key expiry matching the session expiry.
func NewRedisStore(client *redis.Client, prefix string) *goredisstore.RedisStore {
	return goredisstore.NewWithPrefix(client, prefix)
}
