// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/marquee-site/marquee/internal/auth"
	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
)

var errInvalidCredentials = NewError(http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	in, err := decodeAndValidate[model.LoginInput](w, r)
	if err != nil {
		return err
	}

	ctx := r.Context()
	ip := middleware.ClientIP(r)
	ua := r.UserAgent()

	if locked, remaining := h.loginProtection.IsAccountLocked(in.Username); locked {
		_ = h.audit.LogLoginFailure(ctx, in.Username, "locked", ip, ua)
		return lockedError(remaining)
	}

	user, err := h.queries.GetUserByUsername(ctx, in.Username)
	if err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("loading user: %w", err)
	}

	ok := false
	if err == nil {
		ok, err = auth.CheckPassword(in.Password, user.PasswordHash)
		if err != nil {
			h.logger.Error("failed to verify password hash", "error", err, "user_id", user.ID)
			ok = false
		}
	}
	if !ok {
		_ = h.audit.LogLoginFailure(ctx, in.Username, "bad_credentials", ip, ua)
		if locked, d := h.loginProtection.RecordFailedAttempt(in.Username); locked {
			return lockedError(d)
		}
		return errInvalidCredentials
	}

	h.loginProtection.RecordSuccessfulLogin(in.Username)

	if auth.NeedsRehash(user.PasswordHash) {
		h.rehashPassword(r, user.ID, in.Password)
	}

	if err := h.sessions.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	h.sessions.Put(ctx, middleware.SessionKeyUserID, user.ID)

	_ = h.audit.LogLogin(ctx, user.ID, user.Username, ip, ua)

	WriteJSON(w, http.StatusOK, userToModel(user))
	return nil
}

// rehashPassword upgrades a legacy or outdated hash. Failures are logged
// only; the login itself already succeeded.
func (h *Handler) rehashPassword(r *http.Request, userID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
			PasswordHash: hash,
			UpdatedAt:    time.Now().UTC(),
			ID:           userID,
		})
	}
	if err != nil {
		h.logger.Warn("failed to upgrade password hash", "error", err, "user_id", userID)
		return
	}
	h.logger.Info("upgraded password hash", "user_id", userID)
}

func lockedError(remaining time.Duration) *Error {
	secs := int(remaining.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return NewError(http.StatusTooManyRequests, "account_locked",
		"Too many failed login attempts. Try again in "+strconv.Itoa(secs)+" seconds.")
}

// Logout handles POST /api/logout. It succeeds without a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) error {
	userID := middleware.GetUserID(r)
	if err := h.sessions.Destroy(r.Context()); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	if userID != 0 {
		_ = h.audit.LogLogout(r.Context(), userID, middleware.ClientIP(r), r.UserAgent())
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}

// CurrentUser handles GET /api/user.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) error {
	user := middleware.GetUser(r)
	if user == nil {
		return ErrUnauthorized
	}
	WriteJSON(w, http.StatusOK, userToModel(*user))
	return nil
}

// ListAuditEvents handles GET /api/audit?limit=.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) error {
	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			return model.ValidationErrors{{Field: "limit", Message: "must be between 1 and 1000"}}
		}
		limit = n
	}

	events, err := h.audit.Recent(r.Context(), limit)
	if err != nil {
		return fmt.Errorf("listing audit events: %w", err)
	}
	WriteJSON(w, http.StatusOK, events)
	return nil
}

