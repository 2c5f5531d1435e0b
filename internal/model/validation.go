// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors for one input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Err returns v as an error, or nil when it is empty.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "is required")
	}
}

func (v *ValidationErrors) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		v.Add(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

// requiredMax checks presence and length, reporting at most one error.
func (v *ValidationErrors) requiredMax(field, value string, n int) {
	before := len(*v)
	v.required(field, value)
	if len(*v) == before {
		v.maxLen(field, value, n)
	}
}

func (v *ValidationErrors) optionalURL(field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	if !isURL(*value) {
		v.Add(field, "must be a valid URL")
	}
}

// isURL accepts absolute http(s) URLs and site-relative paths such as
// /uploads/{id}.
func isURL(s string) bool {
	if strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var durationPattern = regexp.MustCompile(`^(\d{1,2}:)?\d{1,2}:[0-5]\d$`)

// IsValidDuration checks a display duration such as 3:45 or 1:02:03.
func IsValidDuration(s string) bool {
	return durationPattern.MatchString(s)
}
