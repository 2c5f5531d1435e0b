// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business logic that sits between the HTTP
// handlers and the store: audit logging, content rendering and uploads.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mileusna/useragent"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
)

// AuditService writes explicit audit events.
type AuditService struct {
	queries *store.Queries
	now     func() time.Time
}

// NewAuditService creates a new AuditService.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{
		queries: store.New(db),
		now:     time.Now,
	}
}

// Log creates an audit entry. Failures are logged and returned.
func (s *AuditService) Log(ctx context.Context, level, category, message string, userID *int64, ip string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	_, err := s.queries.CreateAuditEvent(ctx, store.CreateAuditEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		IpAddress: ip,
		Metadata:  metadataJSON,
		CreatedAt: s.now(),
	})
	if err != nil {
		// Plain Info so the audit log handler does not try to persist it again.
		slog.Info("failed to write audit event", "error", err, "message", message)
		return err
	}
	return nil
}

// LogLogin records a successful login.
func (s *AuditService) LogLogin(ctx context.Context, userID int64, username, ip, userAgent string) error {
	md := ClientMetadata(userAgent)
	md["username"] = username
	return s.Log(ctx, model.AuditLevelInfo, model.AuditCategoryAuth, "login succeeded", &userID, ip, md)
}

// LogLoginFailure records a failed login. reason is a short machine
// readable tag such as "bad_credentials" or "locked".
func (s *AuditService) LogLoginFailure(ctx context.Context, username, reason, ip, userAgent string) error {
	md := ClientMetadata(userAgent)
	md["username"] = username
	md["reason"] = reason
	return s.Log(ctx, model.AuditLevelWarning, model.AuditCategoryAuth, "login failed", nil, ip, md)
}

// LogLogout records a logout of a known user.
func (s *AuditService) LogLogout(ctx context.Context, userID int64, ip, userAgent string) error {
	return s.Log(ctx, model.AuditLevelInfo, model.AuditCategoryAuth, "logout", &userID, ip, ClientMetadata(userAgent))
}

// Recent returns the newest audit events.
func (s *AuditService) Recent(ctx context.Context, limit int64) ([]model.AuditEvent, error) {
	rows, err := s.queries.ListAuditEvents(ctx, limit)
	if err != nil {
		return nil, err
	}
	events := make([]model.AuditEvent, 0, len(rows))
	for _, r := range rows {
		e := model.AuditEvent{
			ID:        r.ID,
			Level:     r.Level,
			Category:  r.Category,
			Message:   r.Message,
			IPAddress: r.IpAddress,
			Metadata:  r.Metadata,
			CreatedAt: r.CreatedAt,
		}
		if r.UserID.Valid {
			id := r.UserID.Int64
			e.UserID = &id
		}
		events = append(events, e)
	}
	return events, nil
}

// DeleteOlderThan removes audit events older than the given age.
func (s *AuditService) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	n, err := s.queries.DeleteAuditEventsBefore(ctx, s.now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("deleting old audit events: %w", err)
	}
	return n, nil
}

// ClientMetadata extracts browser, OS and device type from a User-Agent.
func ClientMetadata(userAgent string) map[string]any {
	ua := useragent.Parse(userAgent)

	browser, os := ua.Name, ua.OS
	if browser == "" {
		browser = "Unknown"
	}
	if os == "" {
		os = "Unknown"
	}

	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}

	return map[string]any{
		"browser": browser,
		"os":      os,
		"device":  device,
	}
}
