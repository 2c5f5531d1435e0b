// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const uploadTargetColumns = `id, name, size, content_type, created_at, expires_at, completed_at`

func scanUploadTarget(row scanner) (UploadTarget, error) {
	var u UploadTarget
	err := row.Scan(&u.ID, &u.Name, &u.Size, &u.ContentType, &u.CreatedAt, &u.ExpiresAt, &u.CompletedAt)
	return u, err
}

type CreateUploadTargetParams struct {
	ID          string
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

func (q *Queries) CreateUploadTarget(ctx context.Context, arg CreateUploadTargetParams) (UploadTarget, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO upload_targets (id, name, size, content_type, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+uploadTargetColumns,
		arg.ID, arg.Name, arg.Size, arg.ContentType, arg.CreatedAt.UTC(), arg.ExpiresAt.UTC(),
	)
	return scanUploadTarget(row)
}

func (q *Queries) GetUploadTarget(ctx context.Context, id string) (UploadTarget, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+uploadTargetColumns+` FROM upload_targets WHERE id = ?`, id)
	return scanUploadTarget(row)
}

type CompleteUploadTargetParams struct {
	CompletedAt time.Time
	ID          string
}

// CompleteUploadTarget marks a pending target complete. It returns
// sql.ErrNoRows when the target does not exist or was already completed.
func (q *Queries) CompleteUploadTarget(ctx context.Context, arg CompleteUploadTargetParams) (UploadTarget, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE upload_targets SET completed_at = ?
		 WHERE id = ? AND completed_at IS NULL
		 RETURNING `+uploadTargetColumns,
		arg.CompletedAt.UTC(), arg.ID,
	)
	return scanUploadTarget(row)
}

// ReopenUploadTarget clears completed_at so the target accepts another PUT.
func (q *Queries) ReopenUploadTarget(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `UPDATE upload_targets SET completed_at = NULL WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredUploadTargets removes targets that were never completed and
// expired before the given time. It returns the number of rows removed.
func (q *Queries) DeleteExpiredUploadTargets(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM upload_targets WHERE completed_at IS NULL AND expires_at < ?`,
		before.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
