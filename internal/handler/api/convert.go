// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
	"github.com/marquee-site/marquee/internal/util"
)

func userToModel(u store.User) model.User {
	return model.User{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func albumToModel(a store.Album) model.Album {
	var links map[string]string
	if a.StreamingLinks.Valid && a.StreamingLinks.String != "" {
		// Rows are only written through albumParams, so the column holds
		// a JSON object; a corrupt value is served as no links.
		_ = json.Unmarshal([]byte(a.StreamingLinks.String), &links)
	}
	return model.Album{
		ID:             a.ID,
		Title:          a.Title,
		CoverImage:     a.CoverImage,
		ReleaseDate:    util.PtrFromNullTime(a.ReleaseDate),
		StreamingLinks: links,
		Description:    a.Description,
		Hidden:         a.Hidden,
	}
}

func albumParams(in model.AlbumInput) (store.CreateAlbumParams, error) {
	var links sql.NullString
	if len(in.StreamingLinks) > 0 {
		b, err := json.Marshal(in.StreamingLinks)
		if err != nil {
			return store.CreateAlbumParams{}, fmt.Errorf("encoding streaming links: %w", err)
		}
		links = sql.NullString{String: string(b), Valid: true}
	}
	return store.CreateAlbumParams{
		Title:          in.Title,
		CoverImage:     in.CoverImage,
		ReleaseDate:    util.NullTimeFromPtr(in.ReleaseDate.Ptr()),
		StreamingLinks: links,
		Description:    in.Description,
		Hidden:         in.Hidden,
	}, nil
}

func trackToModel(t store.Track) model.Track {
	return model.Track{
		ID:         t.ID,
		Title:      t.Title,
		AudioURL:   t.AudioUrl,
		PhotoURL:   util.PtrFromNullString(t.PhotoUrl),
		Duration:   t.Duration,
		IsSingle:   t.IsSingle,
		IsFeatured: t.IsFeatured,
		Hidden:     t.Hidden,
		AlbumID:    util.PtrFromNullInt64(t.AlbumID),
	}
}

func trackParams(in model.TrackInput) store.CreateTrackParams {
	return store.CreateTrackParams{
		Title:      in.Title,
		AudioUrl:   in.AudioURL,
		PhotoUrl:   util.NullStringFromPtr(in.PhotoURL),
		Duration:   in.Duration,
		IsSingle:   in.IsSingle,
		IsFeatured: in.IsFeatured,
		Hidden:     in.Hidden,
		AlbumID:    util.NullInt64FromPtr(in.AlbumID),
	}
}

func videoToModel(v store.Video) model.Video {
	return model.Video{
		ID:           v.ID,
		Title:        v.Title,
		VideoURL:     v.VideoUrl,
		ThumbnailURL: util.PtrFromNullString(v.ThumbnailUrl),
		Category:     v.Category,
		IsFeatured:   v.IsFeatured,
		Hidden:       v.Hidden,
	}
}

func videoParams(in model.VideoInput) store.CreateVideoParams {
	return store.CreateVideoParams{
		Title:        in.Title,
		VideoUrl:     in.VideoURL,
		ThumbnailUrl: util.NullStringFromPtr(in.ThumbnailURL),
		Category:     in.Category,
		IsFeatured:   in.IsFeatured,
		Hidden:       in.Hidden,
	}
}

func eventToModel(e store.Event) model.Event {
	return model.Event{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date.UTC(),
		Location:  e.Location,
		Venue:     e.Venue,
		Type:      e.Type,
		TicketURL: util.PtrFromNullString(e.TicketUrl),
		Hidden:    e.Hidden,
	}
}

func eventParams(in model.EventInput) store.CreateEventParams {
	return store.CreateEventParams{
		Title:     in.Title,
		Date:      in.Date.Time,
		Location:  in.Location,
		Venue:     in.Venue,
		Type:      in.Type,
		TicketUrl: util.NullStringFromPtr(in.TicketURL),
		Hidden:    in.Hidden,
	}
}

func pressToModel(p store.Press) model.Press {
	return model.Press{
		ID:      p.ID,
		Title:   p.Title,
		Source:  p.Source,
		URL:     p.Url,
		Snippet: util.PtrFromNullString(p.Snippet),
		Date:    util.PtrFromNullTime(p.Date),
		Hidden:  p.Hidden,
	}
}

func pressParams(in model.PressInput) store.CreatePressParams {
	return store.CreatePressParams{
		Title:   in.Title,
		Source:  in.Source,
		Url:     in.URL,
		Snippet: util.NullStringFromPtr(in.Snippet),
		Date:    util.NullTimeFromPtr(in.Date.Ptr()),
		Hidden:  in.Hidden,
	}
}

func photoToModel(p store.Photo) model.Photo {
	return model.Photo{
		ID:           p.ID,
		ImageURL:     p.ImageUrl,
		Title:        p.Title,
		Category:     p.Category,
		DisplayOrder: p.DisplayOrder,
		Hidden:       p.Hidden,
	}
}

func photoParams(in model.PhotoInput) store.CreatePhotoParams {
	return store.CreatePhotoParams{
		ImageUrl:     in.ImageURL,
		Title:        in.Title,
		Category:     in.Category,
		DisplayOrder: in.DisplayOrder,
		Hidden:       in.Hidden,
	}
}

func messageToModel(m store.Message) model.Message {
	return model.Message{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Message,
		Read:      m.Read,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// mapSlice converts every element of in with fn. The result is never nil,
// so empty lists encode as [].
func mapSlice[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
