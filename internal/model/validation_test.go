// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// fieldsOf returns the field names reported by err.
func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("error %v is not ValidationErrors", err)
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fe.Field
	}
	return fields
}

func assertFields(t *testing.T, name string, err error, want []string) {
	t.Helper()
	got := fieldsOf(t, err)
	if len(got) != len(want) {
		t.Errorf("%s: fields = %v, want %v", name, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%s: fields[%d] = %q, want %q", name, i, got[i], want[i])
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidationErrorsErr(t *testing.T) {
	var errs ValidationErrors
	if errs.Err() != nil {
		t.Error("empty ValidationErrors.Err() should be nil")
	}
	errs.Add("title", "is required")
	err := errs.Err()
	if err == nil {
		t.Fatal("Err() = nil, want error")
	}
	if !strings.Contains(err.Error(), "title: is required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEventInputValidate(t *testing.T) {
	valid := EventInput{
		Title:    "Spring Tour",
		Date:     NewDate(time.Now()),
		Location: "Berlin",
		Venue:    "Columbiahalle",
		Type:     EventTypeConcert,
	}

	tests := []struct {
		name   string
		mutate func(*EventInput)
		want   []string
	}{
		{name: "valid", mutate: func(*EventInput) {}},
		{name: "missing title", mutate: func(in *EventInput) { in.Title = " " }, want: []string{"title"}},
		{name: "missing date", mutate: func(in *EventInput) { in.Date = Date{} }, want: []string{"date"}},
		{name: "malformed date", mutate: func(in *EventInput) { in.Date = Date{invalid: true} }, want: []string{"date"}},
		{name: "bad type", mutate: func(in *EventInput) { in.Type = "party" }, want: []string{"type"}},
		{name: "bad ticket url", mutate: func(in *EventInput) { in.TicketURL = ptr("tickets please") }, want: []string{"ticketUrl"}},
		{name: "empty ticket url", mutate: func(in *EventInput) { in.TicketURL = ptr("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assertFields(t, tt.name, in.Validate(), tt.want)
		})
	}
}

func TestEventInputOutOfRangeDate(t *testing.T) {
	var in EventInput
	body := `{"title":"Show","date":1e300,"location":"Oslo","venue":"Rockefeller","type":"concert"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	assertFields(t, "1e300 date", in.Validate(), []string{"date"})
}

func TestEventInputNormalize(t *testing.T) {
	in := EventInput{}
	in.Normalize()
	if in.Type != EventTypeConcert {
		t.Errorf("Type = %q, want %q", in.Type, EventTypeConcert)
	}
}

func TestTrackInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   TrackInput
		want []string
	}{
		{name: "valid", in: TrackInput{Title: "Song", AudioURL: "/uploads/x", Duration: "3:45"}},
		{name: "long duration", in: TrackInput{Title: "Song", AudioURL: "/uploads/x", Duration: "1:02:03"}},
		{name: "no duration", in: TrackInput{Title: "Song", AudioURL: "/uploads/x"}},
		{name: "bad duration", in: TrackInput{Title: "Song", AudioURL: "/uploads/x", Duration: "225"}, want: []string{"duration"}},
		{name: "bad album", in: TrackInput{Title: "Song", AudioURL: "/uploads/x", AlbumID: ptr(int64(0))}, want: []string{"albumId"}},
		{name: "missing all", in: TrackInput{}, want: []string{"title", "audioUrl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFields(t, tt.name, tt.in.Validate(), tt.want)
		})
	}
}

func TestVideoInputValidate(t *testing.T) {
	in := VideoInput{Title: "Live at X", VideoURL: "https://youtube.com/watch?v=1"}
	in.Normalize()
	if in.Category != VideoCategoryOther {
		t.Errorf("default category = %q", in.Category)
	}
	assertFields(t, "valid", in.Validate(), nil)

	in.Category = "documentary"
	assertFields(t, "bad category", in.Validate(), []string{"category"})

	for _, c := range ValidVideoCategories() {
		in.Category = c
		assertFields(t, c, in.Validate(), nil)
	}
}

func TestAlbumInputValidate(t *testing.T) {
	in := AlbumInput{
		Title:          "Debut",
		StreamingLinks: map[string]string{"spotify": "https://open.spotify.com/album/1"},
	}
	assertFields(t, "valid", in.Validate(), nil)

	in.StreamingLinks["bandcamp"] = "not a url"
	assertFields(t, "bad link", in.Validate(), []string{"streamingLinks.bandcamp"})

	in = AlbumInput{Title: strings.Repeat("x", MaxTitleLen+1)}
	assertFields(t, "long title", in.Validate(), []string{"title"})
}

func TestPressInputValidate(t *testing.T) {
	in := PressInput{Title: "Review", Source: "Zine", URL: "https://zine.example/review"}
	assertFields(t, "valid", in.Validate(), nil)

	in.Date = Date{invalid: true}
	in.URL = "zine"
	assertFields(t, "bad url and date", in.Validate(), []string{"url", "date"})
}

func TestMessageInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   MessageInput
		want []string
	}{
		{name: "valid", in: MessageInput{Name: "Ann", Email: "ann@example.com", Subject: "Hi", Message: "Hello"}},
		{name: "no subject", in: MessageInput{Name: "Ann", Email: "ann@example.com", Message: "Hello"}},
		{name: "bad email", in: MessageInput{Name: "Ann", Email: "Ann <ann@example.com>", Message: "Hello"}, want: []string{"email"}},
		{name: "empty", in: MessageInput{}, want: []string{"name", "email", "message"}},
		{name: "long message", in: MessageInput{Name: "Ann", Email: "ann@example.com", Message: strings.Repeat("a", MaxMessageLen+1)}, want: []string{"message"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFields(t, tt.name, tt.in.Validate(), tt.want)
		})
	}
}

func TestSmallInputsValidate(t *testing.T) {
	assertFields(t, "login", LoginInput{}.Validate(), []string{"username", "password"})
	assertFields(t, "content", ContentBlockInput{Content: "x"}.Validate(), []string{"key"})
	assertFields(t, "photo", PhotoInput{DisplayOrder: -1}.Validate(), []string{"imageUrl", "displayOrder"})
	assertFields(t, "read", MessageReadInput{}.Validate(), []string{"read"})
	assertFields(t, "read ok", MessageReadInput{Read: ptr(false)}.Validate(), nil)
	assertFields(t, "upload", UploadRequest{Size: -1}.Validate(), []string{"name", "size", "contentType"})
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/x", true},
		{"http://example.com", true},
		{"/uploads/abc", true},
		{"//evil.example", false},
		{"ftp://example.com", false},
		{"javascript:alert(1)", false},
		{"example.com", false},
	}
	for _, tt := range tests {
		if got := isURL(tt.in); got != tt.want {
			t.Errorf("isURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFilterVisible(t *testing.T) {
	photos := []Photo{{ID: 1}, {ID: 2, Hidden: true}, {ID: 3}}
	got := FilterVisible(photos)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("FilterVisible = %+v", got)
	}
	if FilterVisible([]Album(nil)) == nil {
		t.Error("FilterVisible(nil) should return empty slice")
	}
}

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{RoleAdmin, true},
		{"editor", false},
		{"", false},
		{"Admin", false},
	}
	for _, tt := range tests {
		u := &User{Role: tt.role}
		if got := u.IsAdmin(); got != tt.want {
			t.Errorf("IsAdmin(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
