// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const albumColumns = `id, title, cover_image, release_date, streaming_links, description, hidden`

func scanAlbum(row scanner) (Album, error) {
	var a Album
	err := row.Scan(&a.ID, &a.Title, &a.CoverImage, &a.ReleaseDate, &a.StreamingLinks, &a.Description, &a.Hidden)
	return a, err
}

// ListAlbums returns all albums, newest release first. Albums without a
// release date sort last.
func (q *Queries) ListAlbums(ctx context.Context) ([]Album, error) {
	return queryList(ctx, q.db,
		`SELECT `+albumColumns+` FROM albums
		 ORDER BY release_date IS NULL, release_date DESC, id DESC`,
		scanAlbum)
}

func (q *Queries) GetAlbum(ctx context.Context, id int64) (Album, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+albumColumns+` FROM albums WHERE id = ?`, id)
	return scanAlbum(row)
}

type CreateAlbumParams struct {
	Title          string
	CoverImage     string
	ReleaseDate    sql.NullTime
	StreamingLinks sql.NullString
	Description    string
	Hidden         bool
}

func (q *Queries) CreateAlbum(ctx context.Context, arg CreateAlbumParams) (Album, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO albums (title, cover_image, release_date, streaming_links, description, hidden)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+albumColumns,
		arg.Title, arg.CoverImage, utcNullTime(arg.ReleaseDate), arg.StreamingLinks, arg.Description, arg.Hidden,
	)
	return scanAlbum(row)
}

type UpdateAlbumParams struct {
	ID int64
	CreateAlbumParams
}

// UpdateAlbum replaces every column of the album. It returns sql.ErrNoRows
// when the id does not exist.
func (q *Queries) UpdateAlbum(ctx context.Context, arg UpdateAlbumParams) (Album, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE albums SET title = ?, cover_image = ?, release_date = ?, streaming_links = ?, description = ?, hidden = ?
		 WHERE id = ?
		 RETURNING `+albumColumns,
		arg.Title, arg.CoverImage, utcNullTime(arg.ReleaseDate), arg.StreamingLinks, arg.Description, arg.Hidden, arg.ID,
	)
	return scanAlbum(row)
}

func (q *Queries) DeleteAlbum(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM albums WHERE id = ?`, id)
	return err
}
