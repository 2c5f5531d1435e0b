// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the JSON shapes of site content and the input
// types accepted by the API, each with a pure Validate method.
package model

import "time"

// RoleAdmin is the admin user role.
const RoleAdmin = "admin"

// User represents an admin account. The password hash is never serialized.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ContentBlock is a keyed fragment of page copy. HTML is rendered from
// Content on the way out and never stored.
type ContentBlock struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	Section   string    `json:"section"`
	HTML      string    `json:"html"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Album struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	CoverImage     string            `json:"coverImage"`
	ReleaseDate    *time.Time        `json:"releaseDate"`
	StreamingLinks map[string]string `json:"streamingLinks"`
	Description    string            `json:"description"`
	Hidden         bool              `json:"hidden"`
}

type Track struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	AudioURL   string  `json:"audioUrl"`
	PhotoURL   *string `json:"photoUrl"`
	Duration   string  `json:"duration"`
	IsSingle   bool    `json:"isSingle"`
	IsFeatured bool    `json:"isFeatured"`
	Hidden     bool    `json:"hidden"`
	AlbumID    *int64  `json:"albumId"`
}

type Video struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Category     string  `json:"category"`
	IsFeatured   bool    `json:"isFeatured"`
	Hidden       bool    `json:"hidden"`
}

type Event struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location"`
	Venue     string    `json:"venue"`
	Type      string    `json:"type"`
	TicketURL *string   `json:"ticketUrl"`
	Hidden    bool      `json:"hidden"`
}

type Press struct {
	ID      int64      `json:"id"`
	Title   string     `json:"title"`
	Source  string     `json:"source"`
	URL     string     `json:"url"`
	Snippet *string    `json:"snippet"`
	Date    *time.Time `json:"date"`
	Hidden  bool       `json:"hidden"`
}

type Photo struct {
	ID           int64  `json:"id"`
	ImageURL     string `json:"imageUrl"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	DisplayOrder int64  `json:"displayOrder"`
	Hidden       bool   `json:"hidden"`
}

// Message is a contact-form submission.
type Message struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Hideable is implemented by content that carries an advisory hidden flag.
type Hideable interface {
	IsHidden() bool
}

// Entity is catalog content addressed by an integer id.
type Entity interface {
	Hideable
	EntityID() int64
}

func (a Album) IsHidden() bool { return a.Hidden }
func (t Track) IsHidden() bool { return t.Hidden }
func (v Video) IsHidden() bool { return v.Hidden }
func (e Event) IsHidden() bool { return e.Hidden }
func (p Press) IsHidden() bool { return p.Hidden }
func (p Photo) IsHidden() bool { return p.Hidden }

func (a Album) EntityID() int64 { return a.ID }
func (t Track) EntityID() int64 { return t.ID }
func (v Video) EntityID() int64 { return v.ID }
func (e Event) EntityID() int64 { return e.ID }
func (p Press) EntityID() int64 { return p.ID }
func (p Photo) EntityID() int64 { return p.ID }

// FilterVisible returns the items whose hidden flag is not set. The result
// is never nil.
func FilterVisible[T Hideable](items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !item.IsHidden() {
			out = append(out, item)
		}
	}
	return out
}
