// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const pressColumns = `id, title, source, url, snippet, date, hidden`

func scanPress(row scanner) (Press, error) {
	var p Press
	err := row.Scan(&p.ID, &p.Title, &p.Source, &p.Url, &p.Snippet, &p.Date, &p.Hidden)
	return p, err
}

// ListPress returns all press items, newest first. Undated items sort last.
func (q *Queries) ListPress(ctx context.Context) ([]Press, error) {
	return queryList(ctx, q.db,
		`SELECT `+pressColumns+` FROM press
		 ORDER BY date IS NULL, date DESC, id DESC`,
		scanPress)
}

func (q *Queries) GetPress(ctx context.Context, id int64) (Press, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+pressColumns+` FROM press WHERE id = ?`, id)
	return scanPress(row)
}

type CreatePressParams struct {
	Title   string
	Source  string
	Url     string
	Snippet sql.NullString
	Date    sql.NullTime
	Hidden  bool
}

func (q *Queries) CreatePress(ctx context.Context, arg CreatePressParams) (Press, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO press (title, source, url, snippet, date, hidden)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+pressColumns,
		arg.Title, arg.Source, arg.Url, arg.Snippet, utcNullTime(arg.Date), arg.Hidden,
	)
	return scanPress(row)
}

type UpdatePressParams struct {
	ID int64
	CreatePressParams
}

func (q *Queries) UpdatePress(ctx context.Context, arg UpdatePressParams) (Press, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE press SET title = ?, source = ?, url = ?, snippet = ?, date = ?, hidden = ?
		 WHERE id = ?
		 RETURNING `+pressColumns,
		arg.Title, arg.Source, arg.Url, arg.Snippet, utcNullTime(arg.Date), arg.Hidden, arg.ID,
	)
	return scanPress(row)
}

func (q *Queries) DeletePress(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM press WHERE id = ?`, id)
	return err
}
