// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const trackColumns = `id, title, audio_url, photo_url, duration, is_single, is_featured, hidden, album_id`

func scanTrack(row scanner) (Track, error) {
	var t Track
	err := row.Scan(&t.ID, &t.Title, &t.AudioUrl, &t.PhotoUrl, &t.Duration, &t.IsSingle, &t.IsFeatured, &t.Hidden, &t.AlbumID)
	return t, err
}

func (q *Queries) ListTracks(ctx context.Context) ([]Track, error) {
	return queryList(ctx, q.db, `SELECT `+trackColumns+` FROM tracks ORDER BY id`, scanTrack)
}

func (q *Queries) ListTracksByAlbum(ctx context.Context, albumID int64) ([]Track, error) {
	return queryList(ctx, q.db,
		`SELECT `+trackColumns+` FROM tracks WHERE album_id = ? ORDER BY id`,
		scanTrack, albumID)
}

func (q *Queries) GetTrack(ctx context.Context, id int64) (Track, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	return scanTrack(row)
}

type CreateTrackParams struct {
	Title      string
	AudioUrl   string
	PhotoUrl   sql.NullString
	Duration   string
	IsSingle   bool
	IsFeatured bool
	Hidden     bool
	AlbumID    sql.NullInt64
}

func (q *Queries) CreateTrack(ctx context.Context, arg CreateTrackParams) (Track, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO tracks (title, audio_url, photo_url, duration, is_single, is_featured, hidden, album_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING `+trackColumns,
		arg.Title, arg.AudioUrl, arg.PhotoUrl, arg.Duration, arg.IsSingle, arg.IsFeatured, arg.Hidden, arg.AlbumID,
	)
	return scanTrack(row)
}

type UpdateTrackParams struct {
	ID int64
	CreateTrackParams
}

func (q *Queries) UpdateTrack(ctx context.Context, arg UpdateTrackParams) (Track, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE tracks SET title = ?, audio_url = ?, photo_url = ?, duration = ?, is_single = ?, is_featured = ?, hidden = ?, album_id = ?
		 WHERE id = ?
		 RETURNING `+trackColumns,
		arg.Title, arg.AudioUrl, arg.PhotoUrl, arg.Duration, arg.IsSingle, arg.IsFeatured, arg.Hidden, arg.AlbumID, arg.ID,
	)
	return scanTrack(row)
}

func (q *Queries) DeleteTrack(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	return err
}
