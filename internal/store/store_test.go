// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/marquee-site/marquee/internal/auth"
)

// testDB creates a migrated database in a temp directory.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "marquee-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./data/marquee.db", "./data/marquee.db"},
		{"sqlite://./data/marquee.db", "./data/marquee.db"},
		{"sqlite3:///var/lib/marquee.db", "/var/lib/marquee.db"},
		{"file:test.db?mode=memory", "file:test.db?mode=memory"},
	}
	for _, tt := range tests {
		if got := normalizeDSN(tt.in); got != tt.want {
			t.Errorf("normalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDataDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./data/marquee.db", "data"},
		{"sqlite:///var/lib/marquee/site.db", "/var/lib/marquee"},
		{"site.db?_pragma=foreign_keys(1)", "."},
		{":memory:", ""},
		{"file:test.db?mode=memory", ""},
	}
	for _, tt := range tests {
		if got := DataDir(tt.in); got != tt.want {
			t.Errorf("DataDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithConnPragmas(t *testing.T) {
	if got := withConnPragmas("a.db"); got != "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Errorf("plain path: got %q", got)
	}
	if got := withConnPragmas("file:a.db?mode=rwc"); got != "file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)" {
		t.Errorf("uri: got %q", got)
	}
	if got := withConnPragmas("a.db?_pragma=foreign_keys(0)"); got != "a.db?_pragma=foreign_keys(0)" {
		t.Errorf("explicit pragmas must be kept: got %q", got)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestUpsertContentBlock(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	first, err := q.UpsertContentBlock(ctx, UpsertContentBlockParams{
		Key:       "hero_title",
		Content:   "Hello",
		Section:   "hero",
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpsertContentBlock: %v", err)
	}

	second, err := q.UpsertContentBlock(ctx, UpsertContentBlockParams{
		Key:       "hero_title",
		Content:   "Hello again",
		Section:   "footer",
		UpdatedAt: time.Now().Add(time.Second),
	})
	if err != nil {
		t.Fatalf("UpsertContentBlock (update): %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID changed on upsert: %d -> %d", first.ID, second.ID)
	}
	if second.Content != "Hello again" {
		t.Errorf("Content = %q, want %q", second.Content, "Hello again")
	}
	if second.Section != "hero" {
		t.Errorf("Section = %q, want section preserved as %q", second.Section, "hero")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}

	blocks, err := q.ListContentBlocks(ctx)
	if err != nil {
		t.Fatalf("ListContentBlocks: %v", err)
	}
	if len(blocks) != 1 {
		t.Errorf("len(blocks) = %d, want 1", len(blocks))
	}

	if _, err := q.GetContentBlockByKey(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("GetContentBlockByKey(missing) err = %v, want sql.ErrNoRows", err)
	}
}

func TestListEmptyReturnsNonNil(t *testing.T) {
	db := testDB(t)
	q := New(db)

	albums, err := q.ListAlbums(context.Background())
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	if albums == nil {
		t.Error("ListAlbums returned nil slice, want empty")
	}
}

func TestAlbumCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	release := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	album, err := q.CreateAlbum(ctx, CreateAlbumParams{
		Title:          "First",
		CoverImage:     "/uploads/cover",
		ReleaseDate:    sql.NullTime{Time: release, Valid: true},
		StreamingLinks: sql.NullString{String: `{"spotify":"x"}`, Valid: true},
		Description:    "debut",
	})
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}
	if album.ID == 0 {
		t.Fatal("CreateAlbum returned zero ID")
	}
	if !album.ReleaseDate.Valid || !album.ReleaseDate.Time.Equal(release) {
		t.Errorf("ReleaseDate = %v, want %v", album.ReleaseDate, release)
	}

	updated, err := q.UpdateAlbum(ctx, UpdateAlbumParams{
		ID: album.ID,
		CreateAlbumParams: CreateAlbumParams{
			Title:      "First (Remastered)",
			CoverImage: "/uploads/cover2",
			Hidden:     true,
		},
	})
	if err != nil {
		t.Fatalf("UpdateAlbum: %v", err)
	}
	if updated.Title != "First (Remastered)" || !updated.Hidden {
		t.Errorf("UpdateAlbum = %+v", updated)
	}
	if updated.ReleaseDate.Valid || updated.StreamingLinks.Valid {
		t.Error("full replace should clear omitted nullable fields")
	}

	_, err = q.UpdateAlbum(ctx, UpdateAlbumParams{ID: 9999})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("UpdateAlbum(missing) err = %v, want sql.ErrNoRows", err)
	}

	if err := q.DeleteAlbum(ctx, album.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	if err := q.DeleteAlbum(ctx, album.ID); err != nil {
		t.Errorf("DeleteAlbum twice: %v", err)
	}
	if _, err := q.GetAlbum(ctx, album.ID); !IsNotFound(err) {
		t.Errorf("GetAlbum after delete err = %v", err)
	}
}

func TestListAlbumsOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	mk := func(title string, release *time.Time) {
		t.Helper()
		p := CreateAlbumParams{Title: title}
		if release != nil {
			p.ReleaseDate = sql.NullTime{Time: *release, Valid: true}
		}
		if _, err := q.CreateAlbum(ctx, p); err != nil {
			t.Fatalf("CreateAlbum(%s): %v", title, err)
		}
	}
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	mk("undated", nil)
	mk("older", &older)
	mk("newer", &newer)

	albums, err := q.ListAlbums(ctx)
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	want := []string{"newer", "older", "undated"}
	if len(albums) != len(want) {
		t.Fatalf("len = %d, want %d", len(albums), len(want))
	}
	for i, a := range albums {
		if a.Title != want[i] {
			t.Errorf("albums[%d] = %q, want %q", i, a.Title, want[i])
		}
	}
}

func TestTrackAlbumRelation(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	album, err := q.CreateAlbum(ctx, CreateAlbumParams{Title: "LP"})
	if err != nil {
		t.Fatalf("CreateAlbum: %v", err)
	}

	track, err := q.CreateTrack(ctx, CreateTrackParams{
		Title:    "Opener",
		AudioUrl: "/uploads/a",
		Duration: "3:45",
		AlbumID:  sql.NullInt64{Int64: album.ID, Valid: true},
	})
	if err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}
	if _, err := q.CreateTrack(ctx, CreateTrackParams{Title: "Loose", AudioUrl: "/uploads/b", IsSingle: true}); err != nil {
		t.Fatalf("CreateTrack: %v", err)
	}

	byAlbum, err := q.ListTracksByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListTracksByAlbum: %v", err)
	}
	if len(byAlbum) != 1 || byAlbum[0].ID != track.ID {
		t.Errorf("ListTracksByAlbum = %+v", byAlbum)
	}

	if err := q.DeleteAlbum(ctx, album.ID); err != nil {
		t.Fatalf("DeleteAlbum: %v", err)
	}
	got, err := q.GetTrack(ctx, track.ID)
	if err != nil {
		t.Fatalf("GetTrack: %v", err)
	}
	if got.AlbumID.Valid {
		t.Errorf("AlbumID = %v, want NULL after album delete", got.AlbumID)
	}
}

func TestEventsChronological(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	base := time.Date(2025, 5, 1, 20, 0, 0, 0, time.UTC)
	for i, title := range []string{"third", "first", "second"} {
		offset := []int{2, 0, 1}[i]
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Title: title,
			Date:  base.AddDate(0, 0, offset),
			Type:  "concert",
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if events[i].Title != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Title, want)
		}
	}
}

func TestEventDateStoredUTC(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2025, 1, 1, 3, 0, 0, 0, loc)
	e, err := q.CreateEvent(ctx, CreateEventParams{Title: "NYE", Date: local})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if !e.Date.Equal(local) {
		t.Errorf("Date = %v, want instant %v", e.Date, local)
	}
}

func TestPressOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	d1 := sql.NullTime{Time: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	d2 := sql.NullTime{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Valid: true}
	for _, p := range []CreatePressParams{
		{Title: "undated", Source: "zine"},
		{Title: "old", Source: "paper", Date: d1},
		{Title: "new", Source: "blog", Date: d2, Snippet: sql.NullString{String: "great", Valid: true}},
	} {
		if _, err := q.CreatePress(ctx, p); err != nil {
			t.Fatalf("CreatePress: %v", err)
		}
	}

	items, err := q.ListPress(ctx)
	if err != nil {
		t.Fatalf("ListPress: %v", err)
	}
	for i, want := range []string{"new", "old", "undated"} {
		if items[i].Title != want {
			t.Errorf("press[%d] = %q, want %q", i, items[i].Title, want)
		}
	}
}

func TestPhotosDisplayOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	for _, p := range []CreatePhotoParams{
		{ImageUrl: "/c", Title: "c", DisplayOrder: 3},
		{ImageUrl: "/a", Title: "a", DisplayOrder: 1},
		{ImageUrl: "/b", Title: "b", DisplayOrder: 2},
	} {
		if _, err := q.CreatePhoto(ctx, p); err != nil {
			t.Fatalf("CreatePhoto: %v", err)
		}
	}

	photos, err := q.ListPhotos(ctx)
	if err != nil {
		t.Fatalf("ListPhotos: %v", err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if photos[i].Title != want {
			t.Errorf("photos[%d] = %q, want %q", i, photos[i].Title, want)
		}
	}
}

func TestVideoUpdateMissing(t *testing.T) {
	db := testDB(t)
	q := New(db)

	_, err := q.UpdateVideo(context.Background(), UpdateVideoParams{
		ID:                42,
		CreateVideoParams: CreateVideoParams{Title: "x", VideoUrl: "y", Category: "other"},
	})
	if !IsNotFound(err) {
		t.Errorf("UpdateVideo(missing) err = %v, want sql.ErrNoRows", err)
	}
}

func TestMessages(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	first, err := q.CreateMessage(ctx, CreateMessageParams{
		Name: "Ann", Email: "ann@example.com", Subject: "Booking", Message: "Hi", CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if first.Read {
		t.Error("new message should be unread")
	}
	second, err := q.CreateMessage(ctx, CreateMessageParams{
		Name: "Bob", Email: "bob@example.com", Subject: "Press", Message: "Hello", CreatedAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	list, err := q.ListMessages(ctx)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("ListMessages should return newest first, got %+v", list)
	}

	unread, err := q.CountUnreadMessages(ctx)
	if err != nil {
		t.Fatalf("CountUnreadMessages: %v", err)
	}
	if unread != 2 {
		t.Errorf("unread = %d, want 2", unread)
	}

	marked, err := q.SetMessageRead(ctx, SetMessageReadParams{Read: true, ID: first.ID})
	if err != nil {
		t.Fatalf("SetMessageRead: %v", err)
	}
	if !marked.Read {
		t.Error("SetMessageRead did not mark read")
	}

	if _, err := q.SetMessageRead(ctx, SetMessageReadParams{Read: true, ID: 999}); !IsNotFound(err) {
		t.Errorf("SetMessageRead(missing) err = %v", err)
	}

	unread, _ = q.CountUnreadMessages(ctx)
	if unread != 1 {
		t.Errorf("unread after mark = %d, want 1", unread)
	}
}

func TestUploadTargets(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	now := time.Now()
	target, err := q.CreateUploadTarget(ctx, CreateUploadTargetParams{
		ID:          "2b1e8a4c-9f7d-4e0a-8c3b-1d2e3f4a5b6c",
		Name:        "cover.jpg",
		Size:        1024,
		ContentType: "image/jpeg",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateUploadTarget: %v", err)
	}
	if target.CompletedAt.Valid {
		t.Error("new target should be pending")
	}

	stale, err := q.CreateUploadTarget(ctx, CreateUploadTargetParams{
		ID:        "stale",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateUploadTarget(stale): %v", err)
	}

	done, err := q.CompleteUploadTarget(ctx, CompleteUploadTargetParams{CompletedAt: now, ID: target.ID})
	if err != nil {
		t.Fatalf("CompleteUploadTarget: %v", err)
	}
	if !done.CompletedAt.Valid {
		t.Error("CompletedAt not set")
	}
	if _, err := q.CompleteUploadTarget(ctx, CompleteUploadTargetParams{CompletedAt: now, ID: target.ID}); !IsNotFound(err) {
		t.Errorf("completing twice err = %v, want sql.ErrNoRows", err)
	}

	if n, err := q.ReopenUploadTarget(ctx, target.ID); err != nil || n != 1 {
		t.Fatalf("ReopenUploadTarget = %d, %v", n, err)
	}
	if _, err := q.CompleteUploadTarget(ctx, CompleteUploadTargetParams{CompletedAt: now, ID: target.ID}); err != nil {
		t.Errorf("completing a reopened target: %v", err)
	}

	n, err := q.DeleteExpiredUploadTargets(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredUploadTargets: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if _, err := q.GetUploadTarget(ctx, stale.ID); !IsNotFound(err) {
		t.Errorf("stale target still present: %v", err)
	}
	if _, err := q.GetUploadTarget(ctx, target.ID); err != nil {
		t.Errorf("completed target removed: %v", err)
	}
}

func TestAuditEvents(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	q := New(db)

	for i, msg := range []string{"one", "two", "three"} {
		if _, err := q.CreateAuditEvent(ctx, CreateAuditEventParams{
			Level:     "WARN",
			Category:  "auth",
			Message:   msg,
			Metadata:  "{}",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("CreateAuditEvent: %v", err)
		}
	}

	events, err := q.ListAuditEvents(ctx, 2)
	if err != nil {
		t.Fatalf("ListAuditEvents: %v", err)
	}
	if len(events) != 2 || events[0].Message != "three" {
		t.Errorf("ListAuditEvents = %+v", events)
	}

	n, err := q.DeleteAuditEventsBefore(ctx, time.Now().Add(1500*time.Millisecond))
	if err != nil {
		t.Fatalf("DeleteAuditEventsBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	events, _ = q.ListAuditEvents(ctx, 10)
	if len(events) != 1 || events[0].Message != "three" {
		t.Errorf("remaining = %+v", events)
	}
}

func TestSeed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, "", "")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !res.Created || res.Username != DefaultAdminUsername {
		t.Fatalf("Seed result = %+v", res)
	}
	if res.GeneratedPassword == "" {
		t.Fatal("expected generated password")
	}

	user, err := New(db).GetUserByUsername(ctx, DefaultAdminUsername)
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	ok, err := auth.CheckPassword(res.GeneratedPassword, user.PasswordHash)
	if err != nil || !ok {
		t.Errorf("generated password does not verify: ok=%v err=%v", ok, err)
	}

	again, err := Seed(ctx, db, DefaultAdminUsername, "new-password")
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if again.Created || again.GeneratedPassword != "" {
		t.Errorf("Seed should be a no-op for an existing username, got %+v", again)
	}
	unchanged, _ := New(db).GetUserByUsername(ctx, DefaultAdminUsername)
	if unchanged.PasswordHash != user.PasswordHash {
		t.Error("existing admin password must not change")
	}

	other, err := Seed(ctx, db, "manager", "another-secret")
	if err != nil {
		t.Fatalf("Seed other: %v", err)
	}
	if !other.Created || other.Username != "manager" {
		t.Errorf("Seed should create a missing username, got %+v", other)
	}
	if _, err := New(db).GetUserByUsername(ctx, "manager"); err != nil {
		t.Errorf("GetUserByUsername(manager): %v", err)
	}
}

func TestSeedWithPassword(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, "band", "s3cret-pass")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.GeneratedPassword != "" {
		t.Error("no password should be generated when one is configured")
	}

	user, err := New(db).GetUserByUsername(ctx, "band")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if ok, _ := auth.CheckPassword("s3cret-pass", user.PasswordHash); !ok {
		t.Error("configured password does not verify")
	}
}
