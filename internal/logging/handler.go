// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the audit_events table.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
)

// AuditLogHandler wraps another handler and also persists records at or
// above its level to audit_events.
type AuditLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
	group   string
}

// NewAuditLogHandler creates an AuditLogHandler persisting WARN and above.
func NewAuditLogHandler(inner slog.Handler, db *sql.DB) *AuditLogHandler {
	return NewAuditLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewAuditLogHandlerWithLevel creates an AuditLogHandler with a custom
// minimum persisted level.
func NewAuditLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *AuditLogHandler {
	return &AuditLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *AuditLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *AuditLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.persist(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *AuditLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return c
}

// WithGroup implements slog.Handler.
func (h *AuditLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.inner = h.inner.WithGroup(name)
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return c
}

func (h *AuditLogHandler) clone() *AuditLogHandler {
	return &AuditLogHandler{
		inner:   h.inner,
		queries: h.queries,
		level:   h.level,
		attrs:   slices.Clone(h.attrs),
		group:   h.group,
	}
}

func (h *AuditLogHandler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

// persist writes the record with a background context so the entry survives
// a cancelled request. Insert failures are dropped to avoid log recursion.
func (h *AuditLogHandler) persist(r slog.Record) {
	attrs := slices.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify(a))
		return true
	})

	var (
		category string
		ip       string
		userID   sql.NullInt64
		meta     = make(map[string]string, len(attrs))
	)
	for _, a := range attrs {
		switch a.Key {
		case "category":
			category = a.Value.String()
		case "ip":
			ip = a.Value.String()
		case "user_id":
			if a.Value.Kind() == slog.KindInt64 {
				userID = sql.NullInt64{Int64: a.Value.Int64(), Valid: true}
			}
		default:
			meta[a.Key] = a.Value.Resolve().String()
		}
	}
	if category == "" {
		category = inferCategory(r.Message)
	}

	metadata := "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metadata = string(b)
		}
	}

	_, _ = h.queries.CreateAuditEvent(context.Background(), store.CreateAuditEventParams{
		Level:     auditLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		IpAddress: ip,
		Metadata:  metadata,
		CreatedAt: r.Time,
	})
}

func auditLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.AuditLevelError
	case level >= slog.LevelWarn:
		return model.AuditLevelWarning
	default:
		return model.AuditLevelInfo
	}
}

// inferCategory guesses a category from the message when none was attached.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "login"), strings.Contains(msg, "logout"),
		strings.Contains(msg, "auth"), strings.Contains(msg, "csrf"), strings.Contains(msg, "session"):
		return model.AuditCategoryAuth
	case strings.Contains(msg, "upload"):
		return model.AuditCategoryUpload
	case strings.Contains(msg, "contact"), strings.Contains(msg, "message"):
		return model.AuditCategoryContact
	case strings.Contains(msg, "content"), strings.Contains(msg, "album"), strings.Contains(msg, "track"),
		strings.Contains(msg, "event"), strings.Contains(msg, "press"), strings.Contains(msg, "photo"),
		strings.Contains(msg, "video"):
		return model.AuditCategoryContent
	default:
		return model.AuditCategorySystem
	}
}
