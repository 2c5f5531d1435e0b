// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session builds the scs session manager used for admin login.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

// Lifetime is the absolute lifetime of an admin session.
const Lifetime = 24 * time.Hour

// cleanupInterval controls how often expired rows are purged from SQLite.
const cleanupInterval = 5 * time.Minute

// New creates a session manager backed by the sessions table in db.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, cleanupInterval)
	configure(sm, isDev)
	return sm
}

// NewRedis creates a session manager backed by Redis.
func NewRedis(client *redis.Client, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = NewRedisStore(client, DefaultRedisPrefix)
	configure(sm, isDev)
	return sm
}

func configure(sm *scs.SessionManager, isDev bool) {
	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if !isDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
	}
}

// Stop halts background cleanup owned by the manager's store.
func Stop(sm *scs.SessionManager) {
	if s, ok := sm.Store.(*sqlite3store.SQLite3Store); ok {
		s.StopCleanup()
	}
}
