// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/store"
	"github.com/marquee-site/marquee/internal/testutil"
)

type testEnv struct {
	db       *sql.DB
	h        *Handler
	sessions *scs.SessionManager
	lp       *middleware.LoginProtection
	uploads  *service.UploadService
	admin    store.User
}

const (
	testAdminUser = "admin"
	testAdminPass = "correct horse battery"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	sm := scs.New()
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	t.Cleanup(lp.Stop)
	uploads := service.NewUploadService(db, t.TempDir())

	h := NewHandler(Config{
		DB:              db,
		Sessions:        sm,
		Uploads:         uploads,
		LoginProtection: lp,
		Logger:          testutil.TestLogger(),
		IsDevelopment:   true,
	})

	return &testEnv{
		db:       db,
		h:        h,
		sessions: sm,
		lp:       lp,
		uploads:  uploads,
		admin:    testutil.CreateUser(t, db, testAdminUser, testAdminPass),
	}
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates a request with a JSON body.
func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asUser puts user into the request context the way LoadUser does.
func asUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// executeHandler runs fn through the error mapper.
func (e *testEnv) executeHandler(fn HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.h.Wrap(fn).ServeHTTP(w, req)
	return w
}

// executeWithSession runs fn inside the session middleware.
func (e *testEnv) executeWithSession(fn HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.sessions.LoadAndSave(e.h.Wrap(fn)).ServeHTTP(w, req)
	return w
}

func (e *testEnv) resource(t *testing.T, path string) Resource {
	t.Helper()
	for _, res := range e.h.Resources() {
		if res.Path == path {
			return res
		}
	}
	t.Fatalf("no resource %q", path)
	return Resource{}
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
	}
	return v
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, want string) ErrorResponse {
	t.Helper()
	resp := decodeBody[ErrorResponse](t, w)
	if resp.Error.Code != want {
		t.Errorf("error code = %q, want %q", resp.Error.Code, want)
	}
	return resp
}
