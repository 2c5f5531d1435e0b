// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package server assembles the HTTP router: middleware chain, API routes,
// upload endpoints, health probes and metrics.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marquee-site/marquee/internal/cache"
	"github.com/marquee-site/marquee/internal/handler"
	"github.com/marquee-site/marquee/internal/handler/api"
	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/version"
)

// APITimeout bounds JSON API handlers. Upload transfers are exempt.
const APITimeout = 30 * time.Second

// devCORSOrigins are allowed when no origins are configured in development.
var devCORSOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}

// Config holds everything the router needs.
type Config struct {
	DB              *sql.DB
	Sessions        *scs.SessionManager
	Uploads         *service.UploadService
	LoginProtection *middleware.LoginProtection
	RenderCache     cache.Cache

	// Logger is the application logger. AccessLogger receives one line per
	// request and defaults to Logger.
	Logger       *slog.Logger
	AccessLogger *slog.Logger

	Version       version.Info
	PublicURL     string
	CORSOrigins   []string
	ContactRate   int
	CSRFKey       []byte
	IsDevelopment bool
}

// New builds the application router.
func New(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	accessLogger := cfg.AccessLogger
	if accessLogger == nil {
		accessLogger = logger
	}
	contactRate := cfg.ContactRate
	if contactRate < 1 {
		contactRate = 5
	}

	apiHandler := api.NewHandler(api.Config{
		DB:              cfg.DB,
		Sessions:        cfg.Sessions,
		Uploads:         cfg.Uploads,
		LoginProtection: cfg.LoginProtection,
		RenderCache:     cfg.RenderCache,
		Logger:          logger,
		PublicURL:       cfg.PublicURL,
		IsDevelopment:   cfg.IsDevelopment,
	})
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Uploads.Dir(), cfg.Version)
	contactLimiter := middleware.NewPerMinuteLimiter("contact", contactRate)

	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)
	securityConfig.ExcludePaths = []string{service.ObjectPathPrefix}

	origins := cfg.CORSOrigins
	skipCSRF := middleware.IsUploadPut
	if len(origins) == 0 && cfg.IsDevelopment {
		origins = devCORSOrigins
		skipCSRF = middleware.AnyOf(middleware.IsUploadPut, middleware.IsLoopbackOrigin)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(accessLogger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecurityHeaders(securityConfig))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(cfg.Sessions.LoadAndSave)
	r.Use(middleware.SkipCSRF(skipCSRF))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.CSRFKey, cfg.CORSOrigins)))
	r.Use(middleware.LoadUser(cfg.Sessions, cfg.DB))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Get(service.ObjectPathPrefix+"{id}", apiHandler.ServeUpload)

	r.Route("/api", func(r chi.Router) {
		// The upload stream may legitimately outlast the API timeout.
		r.Put("/uploads/{id}", apiHandler.ReceiveUpload)
		r.Options("/uploads/{id}", allow(http.MethodPut, http.MethodOptions))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(APITimeout))
			mountAPI(r, apiHandler, cfg.LoginProtection, contactLimiter)
		})

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			api.WriteError(w, http.StatusNotFound, api.ErrNotFound.Code, api.ErrNotFound.Message, nil)
		})
	})

	return r
}

func mountAPI(r chi.Router, h *api.Handler, lp *middleware.LoginProtection, contactLimiter *middleware.IPRateLimiter) {
	w := h.Wrap
	requireAuth := middleware.RequireAuth

	if lp != nil {
		r.With(lp.Middleware()).Post("/login", w(h.Login))
	} else {
		r.Post("/login", w(h.Login))
	}
	r.Post("/logout", w(h.Logout))
	r.Get("/user", w(h.CurrentUser))

	r.Route("/content", func(r chi.Router) {
		r.Get("/", w(h.ListContent))
		r.Get("/{key}", w(h.GetContent))
		r.With(requireAuth).Post("/", w(h.UpsertContent))
	})

	for _, res := range h.Resources() {
		r.Route("/"+res.Path, func(r chi.Router) {
			r.Get("/", w(res.List))
			r.Get("/{id}", w(res.Get))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", w(res.Create))
				r.Put("/{id}", w(res.Update))
				r.Patch("/{id}", w(res.Update))
				r.Delete("/{id}", w(res.Delete))
			})
		})
	}

	r.Route("/contact", func(r chi.Router) {
		r.With(contactLimiter.Middleware()).Post("/", w(h.SubmitContact))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", w(h.ListMessages))
			r.Get("/unread", w(h.UnreadCount))
			r.Patch("/{id}", w(h.SetMessageRead))
		})
	})

	r.With(requireAuth).Post("/uploads/request-url", w(h.RequestUploadURL))
	r.With(requireAuth).Get("/audit", w(h.ListAuditEvents))
}

// allow answers a plain OPTIONS request. CORS preflights are handled by the
// cors middleware before routing.
func allow(methods ...string) http.HandlerFunc {
	value := strings.Join(methods, ", ")
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", value)
		w.WriteHeader(http.StatusNoContent)
	}
}
