// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
)

const videoColumns = `id, title, video_url, thumbnail_url, category, is_featured, hidden`

func scanVideo(row scanner) (Video, error) {
	var v Video
	err := row.Scan(&v.ID, &v.Title, &v.VideoUrl, &v.ThumbnailUrl, &v.Category, &v.IsFeatured, &v.Hidden)
	return v, err
}

func (q *Queries) ListVideos(ctx context.Context) ([]Video, error) {
	return queryList(ctx, q.db, `SELECT `+videoColumns+` FROM videos ORDER BY id`, scanVideo)
}

func (q *Queries) GetVideo(ctx context.Context, id int64) (Video, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideo(row)
}

type CreateVideoParams struct {
	Title        string
	VideoUrl     string
	ThumbnailUrl sql.NullString
	Category     string
	IsFeatured   bool
	Hidden       bool
}

func (q *Queries) CreateVideo(ctx context.Context, arg CreateVideoParams) (Video, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO videos (title, video_url, thumbnail_url, category, is_featured, hidden)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING `+videoColumns,
		arg.Title, arg.VideoUrl, arg.ThumbnailUrl, arg.Category, arg.IsFeatured, arg.Hidden,
	)
	return scanVideo(row)
}

type UpdateVideoParams struct {
	ID int64
	CreateVideoParams
}

func (q *Queries) UpdateVideo(ctx context.Context, arg UpdateVideoParams) (Video, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE videos SET title = ?, video_url = ?, thumbnail_url = ?, category = ?, is_featured = ?, hidden = ?
		 WHERE id = ?
		 RETURNING `+videoColumns,
		arg.Title, arg.VideoUrl, arg.ThumbnailUrl, arg.Category, arg.IsFeatured, arg.Hidden, arg.ID,
	)
	return scanVideo(row)
}

func (q *Queries) DeleteVideo(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}
