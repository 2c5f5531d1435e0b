// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/service"
)

// UploadURLResponse is the reply to POST /api/uploads/request-url.
type UploadURLResponse struct {
	UploadURL  string              `json:"uploadURL"`
	ObjectPath string              `json:"objectPath"`
	Metadata   model.UploadRequest `json:"metadata"`
}

// RequestUploadURL handles POST /api/uploads/request-url. It mints an
// upload id and answers with the URL the client PUTs the file to.
func (h *Handler) RequestUploadURL(w http.ResponseWriter, r *http.Request) error {
	in, err := decodeAndValidate[model.UploadRequest](w, r)
	if err != nil {
		return err
	}

	target, err := h.uploads.RequestTarget(r.Context(), in)
	if err != nil {
		return fmt.Errorf("requesting upload target: %w", err)
	}

	_ = h.audit.Log(r.Context(), model.AuditLevelInfo, model.AuditCategoryUpload, "upload requested",
		middleware.GetUserIDPtr(r), middleware.ClientIP(r), map[string]any{
			"upload_id":    target.ID,
			"name":         in.Name,
			"size":         in.Size,
			"content_type": in.ContentType,
		})

	WriteJSON(w, http.StatusOK, UploadURLResponse{
		UploadURL:  h.baseURL(r) + "/api/uploads/" + target.ID,
		ObjectPath: service.ObjectPath(target.ID),
		Metadata:   in,
	})
	return nil
}

// baseURL returns the configured public URL, or the scheme and host the
// request arrived on.
func (h *Handler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// ReceiveUpload handles PUT /api/uploads/{id}. The body is streamed to
// disk as is. It answers exactly once: 200 with the object path, 404 for
// an id without a pending target, 409 while another PUT for the same id is
// in flight, or 500.
func (h *Handler) ReceiveUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	objectPath, n, err := h.uploads.Receive(r.Context(), id, r.Body)
	switch {
	case err == nil:
		h.logger.Info("upload stored", "upload_id", id, "bytes", n, "ip", middleware.ClientIP(r))
		WriteJSON(w, http.StatusOK, map[string]string{"objectPath": objectPath})
	case errors.Is(err, service.ErrUploadNotFound):
		WriteError(w, http.StatusNotFound, ErrNotFound.Code, "Upload target not found", nil)
	case errors.Is(err, service.ErrUploadInProgress):
		WriteError(w, http.StatusConflict, "upload_in_progress", "Upload already in progress", nil)
	default:
		h.logger.Error("upload failed", "error", err, "upload_id", id, "bytes", n)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Upload failed", nil)
	}
}

// ServeUpload handles GET /uploads/{id}. The content type is sniffed from
// the stored bytes.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	f, info, err := h.uploads.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, service.ErrUploadNotFound) {
			h.logger.Error("failed to open upload", "error", err, "path", r.URL.Path)
			WriteError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", nil)
			return
		}
		WriteError(w, http.StatusNotFound, ErrNotFound.Code, ErrNotFound.Message, nil)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, "", info.ModTime(), f)
}
