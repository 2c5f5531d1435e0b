// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "fmt"

// Field length limits
const (
	MaxTitleLen   = 200
	MaxKeyLen     = 100
	MaxURLLen     = 2048
	MaxNameLen    = 200
	MaxEmailLen   = 320
	MaxSubjectLen = 200
	MaxMessageLen = 5000
)

// LoginInput is the body of POST /api/login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (in LoginInput) Validate() error {
	var errs ValidationErrors
	errs.required("username", in.Username)
	errs.required("password", in.Password)
	return errs.Err()
}

// ContentBlockInput is the body of POST /api/content.
type ContentBlockInput struct {
	Key     string `json:"key"`
	Content string `json:"content"`
	Section string `json:"section"`
}

func (in ContentBlockInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("key", in.Key, MaxKeyLen)
	errs.maxLen("section", in.Section, MaxKeyLen)
	return errs.Err()
}

type AlbumInput struct {
	Title          string            `json:"title"`
	CoverImage     string            `json:"coverImage"`
	ReleaseDate    Date              `json:"releaseDate"`
	StreamingLinks map[string]string `json:"streamingLinks"`
	Description    string            `json:"description"`
	Hidden         bool              `json:"hidden"`
}

func (in AlbumInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("title", in.Title, MaxTitleLen)
	errs.maxLen("coverImage", in.CoverImage, MaxURLLen)
	if in.ReleaseDate.Malformed() {
		errs.Add("releaseDate", "must be a valid date")
	}
	for platform, link := range in.StreamingLinks {
		if platform == "" {
			errs.Add("streamingLinks", "platform name must not be empty")
			continue
		}
		if link != "" && !isURL(link) {
			errs.Add(fmt.Sprintf("streamingLinks.%s", platform), "must be a valid URL")
		}
	}
	return errs.Err()
}

type TrackInput struct {
	Title      string  `json:"title"`
	AudioURL   string  `json:"audioUrl"`
	PhotoURL   *string `json:"photoUrl"`
	Duration   string  `json:"duration"`
	IsSingle   bool    `json:"isSingle"`
	IsFeatured bool    `json:"isFeatured"`
	Hidden     bool    `json:"hidden"`
	AlbumID    *int64  `json:"albumId"`
}

func (in TrackInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("title", in.Title, MaxTitleLen)
	errs.requiredMax("audioUrl", in.AudioURL, MaxURLLen)
	if in.Duration != "" && !IsValidDuration(in.Duration) {
		errs.Add("duration", "must look like 3:45")
	}
	if in.AlbumID != nil && *in.AlbumID <= 0 {
		errs.Add("albumId", "must be a positive id")
	}
	return errs.Err()
}

type VideoInput struct {
	Title        string  `json:"title"`
	VideoURL     string  `json:"videoUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
	Category     string  `json:"category"`
	IsFeatured   bool    `json:"isFeatured"`
	Hidden       bool    `json:"hidden"`
}

// Normalize fills defaults before validation.
func (in *VideoInput) Normalize() {
	if in.Category == "" {
		in.Category = VideoCategoryOther
	}
}

func (in VideoInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("title", in.Title, MaxTitleLen)
	errs.requiredMax("videoUrl", in.VideoURL, MaxURLLen)
	if in.VideoURL != "" && !isURL(in.VideoURL) {
		errs.Add("videoUrl", "must be a valid URL")
	}
	errs.optionalURL("thumbnailUrl", in.ThumbnailURL)
	if !IsValidVideoCategory(in.Category) {
		errs.Add("category", "must be one of music_video, live, interview, clip, other")
	}
	return errs.Err()
}

type EventInput struct {
	Title     string  `json:"title"`
	Date      Date    `json:"date"`
	Location  string  `json:"location"`
	Venue     string  `json:"venue"`
	Type      string  `json:"type"`
	TicketURL *string `json:"ticketUrl"`
	Hidden    bool    `json:"hidden"`
}

func (in *EventInput) Normalize() {
	if in.Type == "" {
		in.Type = EventTypeConcert
	}
}

func (in EventInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("title", in.Title, MaxTitleLen)
	switch {
	case in.Date.Malformed():
		errs.Add("date", "must be a valid date")
	case !in.Date.Valid:
		errs.Add("date", "is required")
	}
	errs.requiredMax("location", in.Location, MaxTitleLen)
	errs.requiredMax("venue", in.Venue, MaxTitleLen)
	if !IsValidEventType(in.Type) {
		errs.Add("type", "must be one of concert, festival")
	}
	errs.optionalURL("ticketUrl", in.TicketURL)
	return errs.Err()
}

type PressInput struct {
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	URL     string  `json:"url"`
	Snippet *string `json:"snippet"`
	Date    Date    `json:"date"`
	Hidden  bool    `json:"hidden"`
}

func (in PressInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("title", in.Title, MaxTitleLen)
	errs.requiredMax("source", in.Source, MaxTitleLen)
	errs.requiredMax("url", in.URL, MaxURLLen)
	if in.URL != "" && !isURL(in.URL) {
		errs.Add("url", "must be a valid URL")
	}
	if in.Date.Malformed() {
		errs.Add("date", "must be a valid date")
	}
	return errs.Err()
}

type PhotoInput struct {
	ImageURL     string `json:"imageUrl"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	DisplayOrder int64  `json:"displayOrder"`
	Hidden       bool   `json:"hidden"`
}

func (in PhotoInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("imageUrl", in.ImageURL, MaxURLLen)
	errs.maxLen("title", in.Title, MaxTitleLen)
	errs.maxLen("category", in.Category, MaxKeyLen)
	if in.DisplayOrder < 0 {
		errs.Add("displayOrder", "must not be negative")
	}
	return errs.Err()
}

// MessageInput is a public contact-form submission.
type MessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (in MessageInput) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("name", in.Name, MaxNameLen)
	errs.requiredMax("email", in.Email, MaxEmailLen)
	if in.Email != "" && !isEmail(in.Email) {
		errs.Add("email", "must be a valid email address")
	}
	errs.maxLen("subject", in.Subject, MaxSubjectLen)
	errs.requiredMax("message", in.Message, MaxMessageLen)
	return errs.Err()
}

// MessageReadInput is the body of PATCH /api/contact/{id}.
type MessageReadInput struct {
	Read *bool `json:"read"`
}

func (in MessageReadInput) Validate() error {
	var errs ValidationErrors
	if in.Read == nil {
		errs.Add("read", "is required")
	}
	return errs.Err()
}

// UploadRequest is the body of POST /api/uploads/request-url.
type UploadRequest struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

func (in UploadRequest) Validate() error {
	var errs ValidationErrors
	errs.requiredMax("name", in.Name, 255)
	if in.Size < 0 {
		errs.Add("size", "must not be negative")
	}
	errs.requiredMax("contentType", in.ContentType, 255)
	return errs.Err()
}
