// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// maxLockout caps the doubling lockout.
const maxLockout = 24 * time.Hour

// staleSweepInterval is how often forgotten accounts and IP limiters are
// dropped.
const staleSweepInterval = 10 * time.Minute

// LoginProtection guards the login endpoint in two layers: a per-IP rate
// limit applied as middleware, and a per-username lockout driven by the
// login handler. Each lockout of the same account lasts twice as long as
// the previous one.
type LoginProtection struct {
	ip *IPRateLimiter

	mu       sync.Mutex
	accounts map[string]*accountState

	threshold int
	baseLock  time.Duration
	window    time.Duration
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// accountState is the failure history of one username.
type accountState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection. Zero
// fields take the defaults from DefaultLoginProtectionConfig.
type LoginProtectionConfig struct {
	IPRateLimit       float64       // login POSTs per second per IP
	IPBurst           int           // burst allowance per IP
	MaxFailedAttempts int           // failures within AttemptWindow that lock the account
	LockoutDuration   time.Duration // first lockout; doubles with each further lockout
	AttemptWindow     time.Duration
}

// DefaultLoginProtectionConfig returns the production settings.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

func (c LoginProtectionConfig) withDefaults() LoginProtectionConfig {
	def := DefaultLoginProtectionConfig()
	if c.IPRateLimit <= 0 {
		c.IPRateLimit = def.IPRateLimit
	}
	if c.IPBurst <= 0 {
		c.IPBurst = def.IPBurst
	}
	if c.MaxFailedAttempts <= 0 {
		c.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = def.LockoutDuration
	}
	if c.AttemptWindow <= 0 {
		c.AttemptWindow = def.AttemptWindow
	}
	return c
}

// NewLoginProtection creates a LoginProtection and starts its background
// sweep. Call Stop to end it.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	cfg = cfg.withDefaults()

	ip := NewIPRateLimiter("login", cfg.IPRateLimit, cfg.IPBurst)
	ip.message = "Too many login attempts. Please wait and try again."

	lp := &LoginProtection{
		ip:        ip,
		accounts:  make(map[string]*accountState),
		threshold: cfg.MaxFailedAttempts,
		baseLock:  cfg.LockoutDuration,
		window:    cfg.AttemptWindow,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
	go lp.sweepLoop()
	return lp
}

// Stop ends the background sweep. It is safe to call more than once.
func (lp *LoginProtection) Stop() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

// accountKey folds case and surrounding space so "Admin" and " admin "
// share one failure counter.
func accountKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// lockoutFor returns the lockout length after n previous lockouts.
func (lp *LoginProtection) lockoutFor(n int) time.Duration {
	d := lp.baseLock
	for range n {
		if d >= maxLockout/2 {
			return maxLockout
		}
		d *= 2
	}
	return min(d, maxLockout)
}

// IsAccountLocked reports whether username is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(username string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(username)]
	if !ok {
		return false, 0
	}
	if left := st.lockedUntil.Sub(lp.now()); left > 0 {
		return true, left
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login. When the failure reaches the
// threshold the account is locked and the lockout length is returned.
func (lp *LoginProtection) RecordFailedAttempt(username string) (bool, time.Duration) {
	key := accountKey(username)
	now := lp.now()

	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[key]
	if !ok {
		st = &accountState{windowStart: now}
		lp.accounts[key] = st
	} else if now.Sub(st.windowStart) > lp.window {
		st.failures = 0
		st.windowStart = now
	}

	st.failures++
	slog.Debug("failed login counted", "username", key, "failures", st.failures)
	if st.failures < lp.threshold {
		return false, 0
	}

	d := lp.lockoutFor(st.lockouts)
	st.lockedUntil = now.Add(d)
	st.lockouts++
	st.failures = 0

	slog.Warn("account locked after failed logins",
		"username", key,
		"lockouts", st.lockouts,
		"duration", d,
	)
	return true, d
}

// RecordSuccessfulLogin forgets the failure history of username.
func (lp *LoginProtection) RecordSuccessfulLogin(username string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(username))
	lp.mu.Unlock()
}

// GetRemainingAttempts returns how many more failures username may have
// before it is locked.
func (lp *LoginProtection) GetRemainingAttempts(username string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	st, ok := lp.accounts[accountKey(username)]
	if !ok || lp.now().Sub(st.windowStart) > lp.window {
		return lp.threshold
	}
	return max(lp.threshold-st.failures, 0)
}

func (lp *LoginProtection) sweepLoop() {
	ticker := time.NewTicker(staleSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lp.sweep()
		case <-lp.stop:
			return
		}
	}
}

// sweep drops accounts that are neither locked nor inside their window.
// Lockout history goes with them.
func (lp *LoginProtection) sweep() {
	if lp.ip.cache.clearIfExceeds(maxLimiterEntries) {
		slog.Info("cleared login IP rate limiters due to size")
	}

	now := lp.now()
	lp.mu.Lock()
	for key, st := range lp.accounts {
		if !now.Before(st.lockedUntil) && now.Sub(st.windowStart) > lp.window {
			delete(lp.accounts, key)
		}
	}
	lp.mu.Unlock()
}

// Middleware rate limits login POSTs per client IP. Other methods pass
// through.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := lp.ip.Middleware()(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
