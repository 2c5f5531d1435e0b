// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const contentBlockColumns = `id, key, content, section, updated_at`

func scanContentBlock(row scanner) (ContentBlock, error) {
	var b ContentBlock
	err := row.Scan(&b.ID, &b.Key, &b.Content, &b.Section, &b.UpdatedAt)
	return b, err
}

func (q *Queries) ListContentBlocks(ctx context.Context) ([]ContentBlock, error) {
	return queryList(ctx, q.db, `SELECT `+contentBlockColumns+` FROM content_blocks ORDER BY id`, scanContentBlock)
}

func (q *Queries) ListContentBlocksBySection(ctx context.Context, section string) ([]ContentBlock, error) {
	return queryList(ctx, q.db,
		`SELECT `+contentBlockColumns+` FROM content_blocks WHERE section = ? ORDER BY id`,
		scanContentBlock, section)
}

func (q *Queries) GetContentBlockByKey(ctx context.Context, key string) (ContentBlock, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+contentBlockColumns+` FROM content_blocks WHERE key = ?`, key)
	return scanContentBlock(row)
}

type UpsertContentBlockParams struct {
	Key       string
	Content   string
	Section   string
	UpdatedAt time.Time
}

// UpsertContentBlock inserts a block, or overwrites only the content of the
// existing block with the same key.
func (q *Queries) UpsertContentBlock(ctx context.Context, arg UpsertContentBlockParams) (ContentBlock, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO content_blocks (key, content, section, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at
		 RETURNING `+contentBlockColumns,
		arg.Key, arg.Content, arg.Section, arg.UpdatedAt.UTC(),
	)
	return scanContentBlock(row)
}
