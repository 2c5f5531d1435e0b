// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/marquee-site/marquee/internal/handler"
	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/store"
)

// SubmitContact handles POST /api/contact. Markup is stripped from every
// field before validation, so a field made only of tags counts as empty.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) error {
	var in model.MessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		return err
	}
	in.Name = service.SanitizePlainText(in.Name)
	in.Email = service.SanitizePlainText(in.Email)
	in.Subject = service.SanitizePlainText(in.Subject)
	in.Message = service.SanitizePlainText(in.Message)
	if err := in.Validate(); err != nil {
		return err
	}

	msg, err := h.queries.CreateMessage(r.Context(), store.CreateMessageParams{
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}

	_ = h.audit.Log(r.Context(), model.AuditLevelInfo, model.AuditCategoryContact, "contact message received",
		nil, middleware.ClientIP(r), map[string]any{"message_id": msg.ID})

	WriteJSON(w, http.StatusCreated, messageToModel(msg))
	return nil
}

// ListMessages handles GET /api/contact, newest first.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) error {
	rows, err := h.queries.ListMessages(r.Context())
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}
	WriteJSON(w, http.StatusOK, mapSlice(rows, messageToModel))
	return nil
}

// UnreadCount handles GET /api/contact/unread.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) error {
	n, err := h.queries.CountUnreadMessages(r.Context())
	if err != nil {
		return fmt.Errorf("counting unread messages: %w", err)
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
	return nil
}

// SetMessageRead handles PATCH /api/contact/{id} with body {"read": bool}.
func (h *Handler) SetMessageRead(w http.ResponseWriter, r *http.Request) error {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		return err
	}
	in, err := decodeAndValidate[model.MessageReadInput](w, r)
	if err != nil {
		return err
	}

	msg, err := h.queries.SetMessageRead(r.Context(), store.SetMessageReadParams{Read: *in.Read, ID: id})
	if err != nil {
		return fmt.Errorf("marking message %d: %w", id, err)
	}
	WriteJSON(w, http.StatusOK, messageToModel(msg))
	return nil
}
