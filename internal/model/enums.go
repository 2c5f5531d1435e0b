// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "slices"

// Video categories
const (
	VideoCategoryMusicVideo = "music_video"
	VideoCategoryLive       = "live"
	VideoCategoryInterview  = "interview"
	VideoCategoryClip       = "clip"
	VideoCategoryOther      = "other"
)

// Event types
const (
	EventTypeConcert  = "concert"
	EventTypeFestival = "festival"
)

// ValidVideoCategories returns all accepted video categories.
func ValidVideoCategories() []string {
	return []string{
		VideoCategoryMusicVideo,
		VideoCategoryLive,
		VideoCategoryInterview,
		VideoCategoryClip,
		VideoCategoryOther,
	}
}

// IsValidVideoCategory checks if a video category is valid.
func IsValidVideoCategory(category string) bool {
	return slices.Contains(ValidVideoCategories(), category)
}

// ValidEventTypes returns all accepted event types.
func ValidEventTypes() []string {
	return []string{EventTypeConcert, EventTypeFestival}
}

// IsValidEventType checks if an event type is valid.
func IsValidEventType(eventType string) bool {
	return slices.Contains(ValidEventTypes(), eventType)
}
