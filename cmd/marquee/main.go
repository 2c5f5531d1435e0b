// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command marquee serves the content API of a musician's promo site.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"

	"github.com/marquee-site/marquee/internal/cache"
	"github.com/marquee-site/marquee/internal/config"
	"github.com/marquee-site/marquee/internal/logging"
	"github.com/marquee-site/marquee/internal/middleware"
	"github.com/marquee-site/marquee/internal/scheduler"
	"github.com/marquee-site/marquee/internal/server"
	"github.com/marquee-site/marquee/internal/service"
	"github.com/marquee-site/marquee/internal/session"
	"github.com/marquee-site/marquee/internal/store"
	"github.com/marquee-site/marquee/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "marquee - promo site content API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DATABASE_URL             SQLite database path (default: ./data/marquee.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PORT                     Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_SESSION_SECRET   Session key, min 32 bytes (random per process when unset)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_UPLOADS_DIR      Upload storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_PUBLIC_URL       Base URL for minted upload URLs (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_ADMIN_USERNAME   Initial admin username (default: admin)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_ADMIN_PASSWORD   Initial admin password (generated when unset)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_REDIS_URL        Redis URL for session storage (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_CORS_ORIGINS     Comma-separated browser origins allowed to call the API\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_CONTACT_RATE     Contact submissions per minute per IP (default: 5)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_RENDER_CACHE_ENTRIES  Rendered content cache size, 0 disables (default: 500)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MARQUEE_AUDIT_RETENTION  How long audit events are kept, 0 keeps them (default: 2160h)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo)
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	baseLogger := slog.New(textHandler)
	slog.SetDefault(baseLogger)

	if cfg.SessionSecretGenerated {
		slog.Warn("MARQUEE_SESSION_SECRET not set; using a random secret, sessions end on restart")
	}

	if dir := store.DataDir(cfg.DatabaseURL); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "dsn", cfg.DatabaseURL)
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// WARN and ERROR records are also written to the audit log table.
	// Access logs stay on the plain handler so client errors are not audited.
	logger := slog.New(logging.NewAuditLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	seed, err := store.Seed(ctx, db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	if seed.GeneratedPassword != "" {
		// Printed once; only the hash is stored.
		_, _ = fmt.Fprintf(os.Stderr, "\nCreated admin user %q with password: %s\nChange it after first login.\n\n",
			seed.Username, seed.GeneratedPassword)
	}

	sessionManager, closeSessions, err := newSessionManager(cfg, db)
	if err != nil {
		return err
	}
	defer closeSessions()

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Stop()

	uploads := service.NewUploadService(db, cfg.UploadsDir)

	var renderCache cache.Cache
	if cfg.RenderCacheEntries > 0 {
		renderCache = cache.NewMemoryCache(cache.MemoryOptions{
			DefaultTTL:      cfg.RenderCacheTTL,
			MaxEntries:      cfg.RenderCacheEntries,
			CleanupInterval: 10 * time.Minute,
		})
		defer func() { _ = renderCache.Close() }()
	}

	sched := scheduler.New(logger)
	if err := sched.Add(scheduler.UploadSweepJob(uploads, logger)); err != nil {
		return fmt.Errorf("registering upload sweeper: %w", err)
	}
	if cfg.AuditRetention > 0 {
		if err := sched.Add(scheduler.AuditPruneJob(service.NewAuditService(db), cfg.AuditRetention, logger)); err != nil {
			return fmt.Errorf("registering audit pruner: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := server.New(server.Config{
		DB:              db,
		Sessions:        sessionManager,
		Uploads:         uploads,
		LoginProtection: loginProtection,
		RenderCache:     renderCache,
		Logger:          logger,
		AccessLogger:    baseLogger,
		Version:         versionInfo,
		PublicURL:       cfg.PublicURL,
		CORSOrigins:     cfg.CORSOrigins,
		ContactRate:     cfg.ContactRate,
		CSRFKey:         []byte(cfg.SessionSecret),
		IsDevelopment:   cfg.IsDevelopment(),
	})

	// No Read/WriteTimeout; uploads stream. API routes have their own timeout.
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newSessionManager returns a Redis-backed manager when MARQUEE_REDIS_URL
// is set and a SQLite-backed one otherwise, plus a cleanup func.
func newSessionManager(cfg *config.Config, db *sql.DB) (*scs.SessionManager, func(), error) {
	if cfg.UseRedisSessions() {
		client, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		slog.Info("using redis session store")
		return session.NewRedis(client, cfg.IsDevelopment()), func() {
			if err := client.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}, nil
	}

	sm := session.New(db, cfg.IsDevelopment())
	return sm, func() { session.Stop(sm) }, nil
}
