// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const eventColumns = `id, title, date, location, venue, type, ticket_url, hidden`

func scanEvent(row scanner) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Date, &e.Location, &e.Venue, &e.Type, &e.TicketUrl, &e.Hidden)
	return e, err
}

// ListEvents returns all events in chronological order.
func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	return queryList(ctx, q.db, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`, scanEvent)
}

func (q *Queries) GetEvent(ctx context.Context, id int64) (Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

type CreateEventParams struct {
	Title     string
	Date      time.Time
	Location  string
	Venue     string
	Type      string
	TicketUrl sql.NullString
	Hidden    bool
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO events (title, date, location, venue, type, ticket_url, hidden)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+eventColumns,
		arg.Title, arg.Date.UTC(), arg.Location, arg.Venue, arg.Type, arg.TicketUrl, arg.Hidden,
	)
	return scanEvent(row)
}

type UpdateEventParams struct {
	ID int64
	CreateEventParams
}

func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE events SET title = ?, date = ?, location = ?, venue = ?, type = ?, ticket_url = ?, hidden = ?
		 WHERE id = ?
		 RETURNING `+eventColumns,
		arg.Title, arg.Date.UTC(), arg.Location, arg.Venue, arg.Type, arg.TicketUrl, arg.Hidden, arg.ID,
	)
	return scanEvent(row)
}

func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}
