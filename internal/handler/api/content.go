// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
)

func (h *Handler) contentToModel(ctx context.Context, b store.ContentBlock) (model.ContentBlock, error) {
	rendered, err := h.renderer.Render(ctx, b.Content)
	if err != nil {
		return model.ContentBlock{}, fmt.Errorf("rendering content block %q: %w", b.Key, err)
	}
	return model.ContentBlock{
		ID:        b.ID,
		Key:       b.Key,
		Content:   b.Content,
		Section:   b.Section,
		HTML:      rendered,
		UpdatedAt: b.UpdatedAt.UTC(),
	}, nil
}

// ListContent handles GET /api/content, optionally filtered by ?section=.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) error {
	var (
		rows []store.ContentBlock
		err  error
	)
	if section := strings.TrimSpace(r.URL.Query().Get("section")); section != "" {
		rows, err = h.queries.ListContentBlocksBySection(r.Context(), section)
	} else {
		rows, err = h.queries.ListContentBlocks(r.Context())
	}
	if err != nil {
		return fmt.Errorf("listing content blocks: %w", err)
	}

	blocks := make([]model.ContentBlock, 0, len(rows))
	for _, row := range rows {
		b, err := h.contentToModel(r.Context(), row)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}
	WriteJSON(w, http.StatusOK, blocks)
	return nil
}

// GetContent handles GET /api/content/{key}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) error {
	key := chi.URLParam(r, "key")
	row, err := h.queries.GetContentBlockByKey(r.Context(), key)
	if err != nil {
		return fmt.Errorf("getting content block %q: %w", key, err)
	}
	b, err := h.contentToModel(r.Context(), row)
	if err != nil {
		return err
	}
	WriteJSON(w, http.StatusOK, b)
	return nil
}

// UpsertContent handles POST /api/content. An existing key keeps its
// section; only the content is replaced.
func (h *Handler) UpsertContent(w http.ResponseWriter, r *http.Request) error {
	in, err := decodeAndValidate[model.ContentBlockInput](w, r)
	if err != nil {
		return err
	}

	row, err := h.queries.UpsertContentBlock(r.Context(), store.UpsertContentBlockParams{
		Key:       in.Key,
		Content:   in.Content,
		Section:   in.Section,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("upserting content block %q: %w", in.Key, err)
	}

	b, err := h.contentToModel(r.Context(), row)
	if err != nil {
		return err
	}
	h.logContentChange(r, "Updated content block", map[string]any{"key": b.Key})
	WriteJSON(w, http.StatusOK, b)
	return nil
}
