// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const auditEventColumns = `id, level, category, message, user_id, ip_address, metadata, created_at`

func scanAuditEvent(row scanner) (AuditEvent, error) {
	var e AuditEvent
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID, &e.IpAddress, &e.Metadata, &e.CreatedAt)
	return e, err
}

type CreateAuditEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}

func (q *Queries) CreateAuditEvent(ctx context.Context, arg CreateAuditEventParams) (AuditEvent, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO audit_events (level, category, message, user_id, ip_address, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+auditEventColumns,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IpAddress, arg.Metadata, arg.CreatedAt.UTC(),
	)
	return scanAuditEvent(row)
}

// ListAuditEvents returns the most recent audit events, newest first.
func (q *Queries) ListAuditEvents(ctx context.Context, limit int64) ([]AuditEvent, error) {
	return queryList(ctx, q.db,
		`SELECT `+auditEventColumns+` FROM audit_events ORDER BY created_at DESC, id DESC LIMIT ?`,
		scanAuditEvent, limit)
}

// DeleteAuditEventsBefore removes events created before cutoff and returns
// the number of rows removed.
func (q *Queries) DeleteAuditEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
