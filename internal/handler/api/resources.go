// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/marquee-site/marquee/internal/handler"
	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
	"github.com/marquee-site/marquee/internal/util"
)

// Resource is the set of CRUD handlers for one catalog collection mounted
// at /api/{Path}.
type Resource struct {
	Path   string
	List   HandlerFunc
	Get    HandlerFunc
	Create HandlerFunc
	Update HandlerFunc
	Delete HandlerFunc
}

// crud binds one entity's storage operations. Update returns
// sql.ErrNoRows for a missing id; remove is a no-op for one.
type crud[In validator, Out model.Entity] struct {
	name   string
	list   func(r *http.Request) ([]Out, error)
	get    func(ctx context.Context, id int64) (Out, error)
	create func(ctx context.Context, in In) (Out, error)
	update func(ctx context.Context, id int64, in In) (Out, error)
	remove func(ctx context.Context, id int64) error
}

func newResource[In validator, Out model.Entity](h *Handler, path string, c crud[In, Out]) Resource {
	return Resource{
		Path: path,

		List: func(w http.ResponseWriter, r *http.Request) error {
			items, err := c.list(r)
			if err != nil {
				return fmt.Errorf("listing %s: %w", path, err)
			}
			if r.URL.Query().Get("visible") == "true" {
				items = model.FilterVisible(items)
			}
			WriteJSON(w, http.StatusOK, items)
			return nil
		},

		Get: func(w http.ResponseWriter, r *http.Request) error {
			id, err := handler.ParseIDParam(r)
			if err != nil {
				return err
			}
			item, err := c.get(r.Context(), id)
			if err != nil {
				return fmt.Errorf("getting %s %d: %w", c.name, id, err)
			}
			WriteJSON(w, http.StatusOK, item)
			return nil
		},

		Create: func(w http.ResponseWriter, r *http.Request) error {
			in, err := decodeAndValidate[In](w, r)
			if err != nil {
				return err
			}
			item, err := c.create(r.Context(), in)
			if err != nil {
				return fmt.Errorf("creating %s: %w", c.name, err)
			}
			h.logContentChange(r, "Created "+c.name, map[string]any{"resource": path, "id": item.EntityID()})
			WriteJSON(w, http.StatusCreated, item)
			return nil
		},

		Update: func(w http.ResponseWriter, r *http.Request) error {
			id, err := handler.ParseIDParam(r)
			if err != nil {
				return err
			}
			in, err := decodeAndValidate[In](w, r)
			if err != nil {
				return err
			}
			item, err := c.update(r.Context(), id, in)
			if err != nil {
				return fmt.Errorf("updating %s %d: %w", c.name, id, err)
			}
			h.logContentChange(r, "Updated "+c.name, map[string]any{"resource": path, "id": id})
			WriteJSON(w, http.StatusOK, item)
			return nil
		},

		Delete: func(w http.ResponseWriter, r *http.Request) error {
			id, err := handler.ParseIDParam(r)
			if err != nil {
				return err
			}
			if err := c.remove(r.Context(), id); err != nil {
				return fmt.Errorf("deleting %s %d: %w", c.name, id, err)
			}
			h.logContentChange(r, "Deleted "+c.name, map[string]any{"resource": path, "id": id})
			w.WriteHeader(http.StatusNoContent)
			return nil
		},
	}
}

// listAll adapts a store list query to a request-scoped list.
func listAll[S, T any](fn func(context.Context) ([]S, error), conv func(S) T) func(*http.Request) ([]T, error) {
	return func(r *http.Request) ([]T, error) {
		rows, err := fn(r.Context())
		if err != nil {
			return nil, err
		}
		return mapSlice(rows, conv), nil
	}
}

func getOne[S, T any](fn func(context.Context, int64) (S, error), conv func(S) T) func(context.Context, int64) (T, error) {
	return func(ctx context.Context, id int64) (T, error) {
		row, err := fn(ctx, id)
		if err != nil {
			var zero T
			return zero, err
		}
		return conv(row), nil
	}
}

// Resources returns the catalog collections in mount order.
func (h *Handler) Resources() []Resource {
	q := h.queries
	return []Resource{
		newResource(h, "albums", crud[model.AlbumInput, model.Album]{
			name: "album",
			list: listAll(q.ListAlbums, albumToModel),
			get:  getOne(q.GetAlbum, albumToModel),
			create: func(ctx context.Context, in model.AlbumInput) (model.Album, error) {
				p, err := albumParams(in)
				if err != nil {
					return model.Album{}, err
				}
				a, err := q.CreateAlbum(ctx, p)
				return albumToModel(a), err
			},
			update: func(ctx context.Context, id int64, in model.AlbumInput) (model.Album, error) {
				p, err := albumParams(in)
				if err != nil {
					return model.Album{}, err
				}
				a, err := q.UpdateAlbum(ctx, store.UpdateAlbumParams{ID: id, CreateAlbumParams: p})
				return albumToModel(a), err
			},
			remove: q.DeleteAlbum,
		}),

		newResource(h, "tracks", crud[model.TrackInput, model.Track]{
			name: "track",
			list: h.listTracks,
			get:  getOne(q.GetTrack, trackToModel),
			create: func(ctx context.Context, in model.TrackInput) (model.Track, error) {
				if err := h.checkAlbumExists(ctx, in.AlbumID); err != nil {
					return model.Track{}, err
				}
				t, err := q.CreateTrack(ctx, trackParams(in))
				return trackToModel(t), err
			},
			update: func(ctx context.Context, id int64, in model.TrackInput) (model.Track, error) {
				if err := h.checkAlbumExists(ctx, in.AlbumID); err != nil {
					return model.Track{}, err
				}
				t, err := q.UpdateTrack(ctx, store.UpdateTrackParams{ID: id, CreateTrackParams: trackParams(in)})
				return trackToModel(t), err
			},
			remove: q.DeleteTrack,
		}),

		newResource(h, "videos", crud[model.VideoInput, model.Video]{
			name: "video",
			list: listAll(q.ListVideos, videoToModel),
			get:  getOne(q.GetVideo, videoToModel),
			create: func(ctx context.Context, in model.VideoInput) (model.Video, error) {
				v, err := q.CreateVideo(ctx, videoParams(in))
				return videoToModel(v), err
			},
			update: func(ctx context.Context, id int64, in model.VideoInput) (model.Video, error) {
				v, err := q.UpdateVideo(ctx, store.UpdateVideoParams{ID: id, CreateVideoParams: videoParams(in)})
				return videoToModel(v), err
			},
			remove: q.DeleteVideo,
		}),

		newResource(h, "events", crud[model.EventInput, model.Event]{
			name: "event",
			list: listAll(q.ListEvents, eventToModel),
			get:  getOne(q.GetEvent, eventToModel),
			create: func(ctx context.Context, in model.EventInput) (model.Event, error) {
				e, err := q.CreateEvent(ctx, eventParams(in))
				return eventToModel(e), err
			},
			update: func(ctx context.Context, id int64, in model.EventInput) (model.Event, error) {
				e, err := q.UpdateEvent(ctx, store.UpdateEventParams{ID: id, CreateEventParams: eventParams(in)})
				return eventToModel(e), err
			},
			remove: q.DeleteEvent,
		}),

		newResource(h, "press", crud[model.PressInput, model.Press]{
			name: "press item",
			list: listAll(q.ListPress, pressToModel),
			get:  getOne(q.GetPress, pressToModel),
			create: func(ctx context.Context, in model.PressInput) (model.Press, error) {
				p, err := q.CreatePress(ctx, pressParams(in))
				return pressToModel(p), err
			},
			update: func(ctx context.Context, id int64, in model.PressInput) (model.Press, error) {
				p, err := q.UpdatePress(ctx, store.UpdatePressParams{ID: id, CreatePressParams: pressParams(in)})
				return pressToModel(p), err
			},
			remove: q.DeletePress,
		}),

		newResource(h, "photos", crud[model.PhotoInput, model.Photo]{
			name: "photo",
			list: listAll(q.ListPhotos, photoToModel),
			get:  getOne(q.GetPhoto, photoToModel),
			create: func(ctx context.Context, in model.PhotoInput) (model.Photo, error) {
				p, err := q.CreatePhoto(ctx, photoParams(in))
				return photoToModel(p), err
			},
			update: func(ctx context.Context, id int64, in model.PhotoInput) (model.Photo, error) {
				p, err := q.UpdatePhoto(ctx, store.UpdatePhotoParams{ID: id, CreatePhotoParams: photoParams(in)})
				return photoToModel(p), err
			},
			remove: q.DeletePhoto,
		}),
	}
}

// listTracks lists all tracks, or those of one album when ?albumId= is set.
func (h *Handler) listTracks(r *http.Request) ([]model.Track, error) {
	raw := r.URL.Query().Get("albumId")
	if raw == "" {
		return listAll(h.queries.ListTracks, trackToModel)(r)
	}

	albumID := util.ParseNullInt64Positive(raw)
	if !albumID.Valid {
		return nil, model.ValidationErrors{{Field: "albumId", Message: "must be a positive id"}}
	}
	rows, err := h.queries.ListTracksByAlbum(r.Context(), albumID.Int64)
	if err != nil {
		return nil, err
	}
	return mapSlice(rows, trackToModel), nil
}

// checkAlbumExists reports a validation error when a track points at an
// album that does not exist.
func (h *Handler) checkAlbumExists(ctx context.Context, albumID *int64) error {
	if albumID == nil {
		return nil
	}
	if _, err := h.queries.GetAlbum(ctx, *albumID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ValidationErrors{{Field: "albumId", Message: "album does not exist"}}
		}
		return fmt.Errorf("checking album %d: %w", *albumID, err)
	}
	return nil
}
