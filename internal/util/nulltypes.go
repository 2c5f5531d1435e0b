// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util converts between optional JSON fields and database/sql
// null types.
package util

import (
	"database/sql"
	"strconv"
	"time"
)

// NullInt64FromPtr converts a pointer to int64 into sql.NullInt64.
func NullInt64FromPtr(ptr *int64) sql.NullInt64 {
	if ptr != nil {
		return sql.NullInt64{Int64: *ptr, Valid: true}
	}
	return sql.NullInt64{}
}

// PtrFromNullInt64 returns nil for an invalid NullInt64.
func PtrFromNullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// ParseNullInt64Positive parses a string into sql.NullInt64, requiring a
// positive value. Anything else yields an invalid NullInt64.
func ParseNullInt64Positive(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	if val, err := strconv.ParseInt(s, 10, 64); err == nil && val > 0 {
		return sql.NullInt64{Int64: val, Valid: true}
	}
	return sql.NullInt64{}
}

// NullStringFromPtr converts an optional string into sql.NullString. A nil
// pointer and an empty string are both stored as NULL.
func NullStringFromPtr(ptr *string) sql.NullString {
	if ptr == nil || *ptr == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *ptr, Valid: true}
}

// PtrFromNullString returns nil for an invalid NullString.
func PtrFromNullString(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

// NullTimeFromPtr converts an optional time into sql.NullTime.
func NullTimeFromPtr(ptr *time.Time) sql.NullTime {
	if ptr == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *ptr, Valid: true}
}

// PtrFromNullTime returns nil for an invalid NullTime. Valid times are
// returned in UTC.
func PtrFromNullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time.UTC()
	return &v
}
