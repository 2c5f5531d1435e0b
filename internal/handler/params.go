// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler contains HTTP handlers shared outside the JSON API:
// health probes and URL parameter helpers.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RouteParamID is the chi URL parameter holding an entity id.
const RouteParamID = "id"

// ErrInvalidID is returned for a missing, non-numeric or non-positive id.
var ErrInvalidID = errors.New("invalid id")

// ParseIDParam parses the {id} URL parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseInt64Param(r, RouteParamID)
}

// ParseInt64Param parses a named chi URL parameter as a positive int64.
func ParseInt64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
