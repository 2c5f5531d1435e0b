// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads runtime settings from environment variables.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/marquee.db"`
	Port        int    `env:"PORT" envDefault:"5000"`

	Host       string `env:"MARQUEE_HOST"`
	Env        string `env:"MARQUEE_ENV" envDefault:"development"`
	LogLevel   string `env:"MARQUEE_LOG_LEVEL" envDefault:"info"`
	UploadsDir string `env:"MARQUEE_UPLOADS_DIR" envDefault:"./uploads"`
	PublicURL  string `env:"MARQUEE_PUBLIC_URL"` // Base for minted upload URLs; request host when empty

	SessionSecret string `env:"MARQUEE_SESSION_SECRET"`
	AdminUsername string `env:"MARQUEE_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"MARQUEE_ADMIN_PASSWORD"`

	RedisURL    string   `env:"MARQUEE_REDIS_URL"` // Optional Redis URL for session storage
	CORSOrigins []string `env:"MARQUEE_CORS_ORIGINS" envSeparator:","`
	ContactRate int      `env:"MARQUEE_CONTACT_RATE" envDefault:"5"` // Contact submissions per minute per IP

	RenderCacheTTL     time.Duration `env:"MARQUEE_RENDER_CACHE_TTL" envDefault:"1h"`
	RenderCacheEntries int           `env:"MARQUEE_RENDER_CACHE_ENTRIES" envDefault:"500"` // 0 disables the cache

	AuditRetention time.Duration `env:"MARQUEE_AUDIT_RETENTION" envDefault:"2160h"` // 0 keeps audit events forever

	// SessionSecretGenerated is set when no secret was configured and a
	// random one was created for this process.
	SessionSecretGenerated bool `env:"-"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// ServerAddr returns the listen address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UseRedisSessions returns true if sessions should be stored in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for a configured session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if !slices.Contains([]string{EnvDevelopment, EnvProduction}, cfg.Env) {
		return nil, fmt.Errorf("MARQUEE_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.Env)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ContactRate < 1 {
		return nil, fmt.Errorf("MARQUEE_CONTACT_RATE must be at least 1, got %d", cfg.ContactRate)
	}

	if cfg.RenderCacheEntries < 0 {
		return nil, fmt.Errorf("MARQUEE_RENDER_CACHE_ENTRIES must not be negative, got %d", cfg.RenderCacheEntries)
	}

	if cfg.AuditRetention < 0 {
		return nil, fmt.Errorf("MARQUEE_AUDIT_RETENTION must not be negative, got %s", cfg.AuditRetention)
	}

	if cfg.PublicURL != "" {
		u, err := url.Parse(cfg.PublicURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("MARQUEE_PUBLIC_URL must be an absolute http(s) URL, got %q", cfg.PublicURL)
		}
		cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	}

	origins := cfg.CORSOrigins[:0]
	for _, o := range cfg.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.CORSOrigins = origins

	if err := cfg.resolveSessionSecret(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) resolveSessionSecret() error {
	if c.SessionSecret == "" {
		b := make([]byte, MinSessionSecretLength)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		c.SessionSecret = base64.RawStdEncoding.EncodeToString(b)
		c.SessionSecretGenerated = true
		return nil
	}

	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("MARQUEE_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(c.SessionSecret))
	}

	if slices.Contains(knownWeakSecrets, c.SessionSecret) {
		return fmt.Errorf("MARQUEE_SESSION_SECRET is a known default value and must not be used; " +
			"generate a secure secret with: openssl rand -base64 32")
	}

	if !hasMinimumEntropy(c.SessionSecret) {
		slog.Warn("MARQUEE_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
