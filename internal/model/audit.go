// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Audit event levels.
const (
	AuditLevelInfo    = "info"
	AuditLevelWarning = "warning"
	AuditLevelError   = "error"
)

// Audit event categories.
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryContent = "content"
	AuditCategoryUpload  = "upload"
	AuditCategoryContact = "contact"
	AuditCategorySystem  = "system"
)

// AuditEvent is a persisted audit log entry.
type AuditEvent struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	UserID    *int64    `json:"userId"`
	IPAddress string    `json:"ipAddress"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
}
