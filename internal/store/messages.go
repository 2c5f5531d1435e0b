// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const messageColumns = `id, name, email, subject, message, read, created_at`

func scanMessage(row scanner) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Read, &m.CreatedAt)
	return m, err
}

type CreateMessageParams struct {
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}

// CreateMessage stores a contact-form submission as unread.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO messages (name, email, subject, message, read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)
		 RETURNING `+messageColumns,
		arg.Name, arg.Email, arg.Subject, arg.Message, arg.CreatedAt.UTC(),
	)
	return scanMessage(row)
}

// ListMessages returns all messages, newest first.
func (q *Queries) ListMessages(ctx context.Context) ([]Message, error) {
	return queryList(ctx, q.db,
		`SELECT `+messageColumns+` FROM messages ORDER BY created_at DESC, id DESC`,
		scanMessage)
}

func (q *Queries) GetMessage(ctx context.Context, id int64) (Message, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

func (q *Queries) CountUnreadMessages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE read = 0`).Scan(&count)
	return count, err
}

type SetMessageReadParams struct {
	Read bool
	ID   int64
}

func (q *Queries) SetMessageRead(ctx context.Context, arg SetMessageReadParams) (Message, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE messages SET read = ? WHERE id = ? RETURNING `+messageColumns,
		arg.Read, arg.ID,
	)
	return scanMessage(row)
}
