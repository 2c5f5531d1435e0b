// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ContentBlock struct {
	ID        int64
	Key       string
	Content   string
	Section   string
	UpdatedAt time.Time
}

type Album struct {
	ID             int64
	Title          string
	CoverImage     string
	ReleaseDate    sql.NullTime
	StreamingLinks sql.NullString // JSON object
	Description    string
	Hidden         bool
}

type Track struct {
	ID         int64
	Title      string
	AudioUrl   string
	PhotoUrl   sql.NullString
	Duration   string
	IsSingle   bool
	IsFeatured bool
	Hidden     bool
	AlbumID    sql.NullInt64
}

type Video struct {
	ID           int64
	Title        string
	VideoUrl     string
	ThumbnailUrl sql.NullString
	Category     string
	IsFeatured   bool
	Hidden       bool
}

type Event struct {
	ID        int64
	Title     string
	Date      time.Time
	Location  string
	Venue     string
	Type      string
	TicketUrl sql.NullString
	Hidden    bool
}

type Press struct {
	ID      int64
	Title   string
	Source  string
	Url     string
	Snippet sql.NullString
	Date    sql.NullTime
	Hidden  bool
}

type Photo struct {
	ID           int64
	ImageUrl     string
	Title        string
	Category     string
	DisplayOrder int64
	Hidden       bool
}

type Message struct {
	ID        int64
	Name      string
	Email     string
	Subject   string
	Message   string
	Read      bool
	CreatedAt time.Time
}

type UploadTarget struct {
	ID          string
	Name        string
	Size        int64
	ContentType string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	CompletedAt sql.NullTime
}

type AuditEvent struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string // JSON string
	CreatedAt time.Time
}
