// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when coercing a date string.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Numeric dates must fall within years 1 to 9999.
var (
	minUnixMilli = float64(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	maxUnixMilli = float64(time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli())
)

// ParseDate coerces a string into a UTC time. Strings without a zone are
// read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Date is a JSON date that accepts RFC 3339 strings, zone-less date-time
// and date-only strings, and numbers of Unix milliseconds. A malformed value
// does not fail decoding; it is reported by Validate on the owning input.
type Date struct {
	Time  time.Time
	Valid bool

	invalid bool
}

// NewDate returns a valid Date for t.
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC(), Valid: true}
}

// Malformed reports whether a value was supplied but could not be coerced.
func (d Date) Malformed() bool {
	return d.invalid
}

// Ptr returns the time or nil when unset.
func (d Date) Ptr() *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			d.invalid = true
			return nil
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		t, err := ParseDate(s)
		if err != nil {
			d.invalid = true
			return nil
		}
		d.Time, d.Valid = t, true
		return nil
	}

	ms, err := strconv.ParseFloat(string(b), 64)
	if err != nil || !(ms >= minUnixMilli && ms <= maxUnixMilli) {
		d.invalid = true
		return nil
	}
	d.Time, d.Valid = time.UnixMilli(int64(ms)).UTC(), true
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}
