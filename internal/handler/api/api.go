// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON REST handlers of the site: content blocks,
// catalog resources, contact messages, admin login and uploads.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/marquee-site/marquee/internal/cache"
	"github.com/marquee-site/marquee/internal/handler"
	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/store"
)

// maxBodyBytes caps JSON request bodies. Upload transfers are not JSON and
// are not affected.
const maxBodyBytes = 1 << 20

// Config holds the dependencies of a Handler.
type Config struct {
	DB              *sql.DB
	Sessions        *scs.SessionManager
	Uploads         *service.UploadService
	LoginProtection *middleware.LoginProtection
	Logger          *slog.Logger

	// RenderCache memoizes rendered content HTML. Optional.
	RenderCache cache.Cache

	// PublicURL is the scheme and host used for minted upload URLs. When
	// empty the request's own scheme and host are used.
	PublicURL     string
	IsDevelopment bool
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db              *sql.DB
	queries         *store.Queries
	sessions        *scs.SessionManager
	renderer        *service.ContentRenderer
	uploads         *service.UploadService
	audit           *service.AuditService
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
	publicURL       string
	isDev           bool
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lp := cfg.LoginProtection
	if lp == nil {
		lp = middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	}
	return &Handler{
		db:              cfg.DB,
		queries:         store.New(cfg.DB),
		sessions:        cfg.Sessions,
		renderer:        service.NewContentRenderer(cfg.RenderCache),
		uploads:         cfg.Uploads,
		audit:           service.NewAuditService(cfg.DB),
		loginProtection: lp,
		logger:          logger,
		publicURL:       cfg.PublicURL,
		isDev:           cfg.IsDevelopment,
	}
}

// Error is an error with a fixed HTTP status and a client-facing message.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewError creates an Error.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

var (
	// ErrUnauthorized is returned when no admin is logged in.
	ErrUnauthorized = NewError(http.StatusUnauthorized, "unauthorized", "Unauthorized")

	// ErrNotFound is returned for ids that do not name a row.
	ErrNotFound = NewError(http.StatusNotFound, "not_found", "Not found")

	errBodyTooLarge = NewError(http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
)

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []model.FieldError `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details []model.FieldError) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// HandlerFunc is an HTTP handler that reports failure by returning an error.
// It must not write a response when it returns a non-nil error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Wrap adapts fn to http.HandlerFunc, sending any returned error through
// the error mapper.
func (h *Handler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

// writeError maps err to a status code and JSON body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs model.ValidationErrors
	var apiErr *Error

	switch {
	case errors.As(err, &verrs):
		WriteError(w, http.StatusBadRequest, "validation_error", "Validation failed", verrs)
	case errors.As(err, &apiErr):
		WriteError(w, apiErr.Status, apiErr.Code, apiErr.Message, nil)
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, handler.ErrInvalidID):
		WriteError(w, http.StatusNotFound, ErrNotFound.Code, ErrNotFound.Message, nil)
	default:
		h.logger.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		msg := "Internal Server Error"
		if h.isDev {
			msg = err.Error()
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

type validator interface {
	Validate() error
}

// decodeJSON reads a JSON body into dst. Malformed JSON is reported as a
// validation error on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return model.ValidationErrors{{Field: "body", Message: "must be a valid JSON object"}}
	}
	return nil
}

// decodeAndValidate decodes a body into T, applies its Normalize method
// when it has one and validates the result.
func decodeAndValidate[T validator](w http.ResponseWriter, r *http.Request) (T, error) {
	var in T
	if err := decodeJSON(w, r, &in); err != nil {
		return in, err
	}
	if n, ok := any(&in).(interface{ Normalize() }); ok {
		n.Normalize()
	}
	if err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// logContentChange writes an info audit entry for an admin mutation. The
// audit service logs its own write failures, which never fail the request.
func (h *Handler) logContentChange(r *http.Request, message string, metadata map[string]any) {
	_ = h.audit.Log(r.Context(), model.AuditLevelInfo, model.AuditCategoryContent, message,
		middleware.GetUserIDPtr(r), middleware.ClientIP(r), metadata)
}
