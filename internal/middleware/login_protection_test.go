// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// clockedLoginProtection returns a LoginProtection reading time from a
// fakeClock, with a generous IP limit.
func clockedLoginProtection(t *testing.T, threshold int, lockout, window time.Duration) (*LoginProtection, *fakeClock) {
	t.Helper()
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       10,
		IPBurst:           100,
		MaxFailedAttempts: threshold,
		LockoutDuration:   lockout,
		AttemptWindow:     window,
	})
	t.Cleanup(lp.Stop)
	clk := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	lp.now = clk.now
	return lp, clk
}

func TestLoginProtectionDefaults(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{})
	defer lp.Stop()

	if lp.threshold != 5 {
		t.Errorf("threshold = %d, want 5", lp.threshold)
	}
	if lp.baseLock != 15*time.Minute {
		t.Errorf("baseLock = %v, want 15m", lp.baseLock)
	}
	if lp.window != 15*time.Minute {
		t.Errorf("window = %v, want 15m", lp.window)
	}
}

func TestLoginProtectionStopTwice(t *testing.T) {
	lp := NewLoginProtection(DefaultLoginProtectionConfig())
	lp.Stop()
	lp.Stop()
}

func TestLoginProtectionLocksAtThreshold(t *testing.T) {
	lp, clk := clockedLoginProtection(t, 3, time.Minute, time.Hour)

	for i := range 2 {
		if locked, _ := lp.RecordFailedAttempt("admin"); locked {
			t.Fatalf("attempt %d locked the account early", i+1)
		}
	}
	locked, d := lp.RecordFailedAttempt("admin")
	if !locked || d != time.Minute {
		t.Fatalf("third attempt = (%v, %v), want (true, 1m)", locked, d)
	}

	clk.advance(20 * time.Second)
	locked, left := lp.IsAccountLocked("admin")
	if !locked || left != 40*time.Second {
		t.Errorf("IsAccountLocked = (%v, %v), want (true, 40s)", locked, left)
	}

	clk.advance(40 * time.Second)
	if locked, _ := lp.IsAccountLocked("admin"); locked {
		t.Error("account still locked after the lockout elapsed")
	}
}

func TestLoginProtectionUsernameFolding(t *testing.T) {
	lp, _ := clockedLoginProtection(t, 2, time.Minute, time.Hour)

	lp.RecordFailedAttempt("Admin")
	lp.RecordFailedAttempt(" admin ")

	if locked, _ := lp.IsAccountLocked("ADMIN"); !locked {
		t.Error("differently cased usernames should share a counter")
	}
	if locked, _ := lp.IsAccountLocked("editor"); locked {
		t.Error("unrelated account locked")
	}
}

func TestLoginProtectionSuccessfulLoginForgets(t *testing.T) {
	lp, _ := clockedLoginProtection(t, 3, time.Minute, time.Hour)

	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	lp.RecordSuccessfulLogin("admin")

	if got := lp.GetRemainingAttempts("admin"); got != 3 {
		t.Errorf("remaining after success = %d, want 3", got)
	}
}

func TestLoginProtectionRemainingAttempts(t *testing.T) {
	lp, clk := clockedLoginProtection(t, 4, time.Minute, 10*time.Minute)

	if got := lp.GetRemainingAttempts("admin"); got != 4 {
		t.Fatalf("initial remaining = %d, want 4", got)
	}
	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	if got := lp.GetRemainingAttempts("admin"); got != 2 {
		t.Errorf("remaining = %d, want 2", got)
	}

	clk.advance(11 * time.Minute)
	if got := lp.GetRemainingAttempts("admin"); got != 4 {
		t.Errorf("remaining after window = %d, want 4", got)
	}
}

func TestLoginProtectionWindowResetsCount(t *testing.T) {
	lp, clk := clockedLoginProtection(t, 3, time.Minute, 10*time.Minute)

	lp.RecordFailedAttempt("admin")
	lp.RecordFailedAttempt("admin")
	clk.advance(11 * time.Minute)

	if locked, _ := lp.RecordFailedAttempt("admin"); locked {
		t.Error("failures from an expired window should not count")
	}
}

func TestLoginProtectionLockoutDoubles(t *testing.T) {
	lp, clk := clockedLoginProtection(t, 1, time.Minute, time.Hour)

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute, 8 * time.Minute}
	for i, w := range want {
		locked, d := lp.RecordFailedAttempt("admin")
		if !locked || d != w {
			t.Fatalf("lockout %d = (%v, %v), want (true, %v)", i+1, locked, d, w)
		}
		clk.advance(d)
	}
}

func TestLockoutForCap(t *testing.T) {
	lp, _ := clockedLoginProtection(t, 5, 15*time.Minute, time.Hour)

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 15 * time.Minute},
		{1, 30 * time.Minute},
		{4, 4 * time.Hour},
		{6, 16 * time.Hour},
		{7, maxLockout},
		{60, maxLockout},
	}
	for _, tt := range tests {
		if got := lp.lockoutFor(tt.n); got != tt.want {
			t.Errorf("lockoutFor(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestLoginProtectionSweep(t *testing.T) {
	lp, clk := clockedLoginProtection(t, 2, time.Minute, 10*time.Minute)

	lp.RecordFailedAttempt("idle")
	lp.RecordFailedAttempt("locked")
	lp.RecordFailedAttempt("locked")

	clk.advance(11 * time.Minute)
	lp.mu.Lock()
	lp.accounts["locked"].lockedUntil = clk.now().Add(time.Hour)
	lp.mu.Unlock()

	lp.sweep()

	lp.mu.Lock()
	defer lp.mu.Unlock()
	if _, ok := lp.accounts["idle"]; ok {
		t.Error("idle account should have been swept")
	}
	if _, ok := lp.accounts["locked"]; !ok {
		t.Error("locked account should survive the sweep")
	}
}

func TestLoginProtectionMiddleware(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit: 0.001,
		IPBurst:     2,
	})
	defer lp.Stop()

	wrapped := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// GET requests are never limited
	for range 5 {
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/login", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET status = %d, want 200", rr.Code)
		}
	}

	var last *httptest.ResponseRecorder
	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		last = httptest.NewRecorder()
		wrapped.ServeHTTP(last, req)
		codes[i] = last.Code
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("first two POSTs = %v, want 200", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third POST = %d, want 429", codes[2])
	}

	var body APIError
	if err := json.Unmarshal(last.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding 429 body: %v", err)
	}
	if body.Error.Message != "Too many login attempts. Please wait and try again." {
		t.Errorf("message = %q", body.Error.Message)
	}
}
