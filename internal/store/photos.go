// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const photoColumns = `id, image_url, title, category, display_order, hidden`

func scanPhoto(row scanner) (Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.ImageUrl, &p.Title, &p.Category, &p.DisplayOrder, &p.Hidden)
	return p, err
}

// ListPhotos returns the gallery in display order.
func (q *Queries) ListPhotos(ctx context.Context) ([]Photo, error) {
	return queryList(ctx, q.db, `SELECT `+photoColumns+` FROM photos ORDER BY display_order ASC, id ASC`, scanPhoto)
}

func (q *Queries) GetPhoto(ctx context.Context, id int64) (Photo, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = ?`, id)
	return scanPhoto(row)
}

type CreatePhotoParams struct {
	ImageUrl     string
	Title        string
	Category     string
	DisplayOrder int64
	Hidden       bool
}

func (q *Queries) CreatePhoto(ctx context.Context, arg CreatePhotoParams) (Photo, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO photos (image_url, title, category, display_order, hidden)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+photoColumns,
		arg.ImageUrl, arg.Title, arg.Category, arg.DisplayOrder, arg.Hidden,
	)
	return scanPhoto(row)
}

type UpdatePhotoParams struct {
	ID int64
	CreatePhotoParams
}

func (q *Queries) UpdatePhoto(ctx context.Context, arg UpdatePhotoParams) (Photo, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE photos SET image_url = ?, title = ?, category = ?, display_order = ?, hidden = ?
		 WHERE id = ?
		 RETURNING `+photoColumns,
		arg.ImageUrl, arg.Title, arg.Category, arg.DisplayOrder, arg.Hidden, arg.ID,
	)
	return scanPhoto(row)
}

func (q *Queries) DeletePhoto(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return err
}
