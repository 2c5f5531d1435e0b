// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marquee-site/marquee/internal/auth"
)

// DefaultAdminUsername is used when no admin username is configured.
const DefaultAdminUsername = "admin"

// SeedResult describes what Seed did.
type SeedResult struct {
	Created           bool
	Username          string
	GeneratedPassword string
}

// Seed creates the admin account when no user with username exists. An
// existing account is left untouched, including its password. When
// password is empty a random one is generated and returned so the caller
// can print it once.
func Seed(ctx context.Context, db *sql.DB, username, password string) (SeedResult, error) {
	queries := New(db)

	if username == "" {
		username = DefaultAdminUsername
	}

	existing, err := queries.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		slog.Debug("admin user present, skipping seed", "username", existing.Username)
		return SeedResult{Username: existing.Username}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return SeedResult{}, fmt.Errorf("looking up admin user: %w", err)
	}

	res := SeedResult{Created: true, Username: username}
	if password == "" {
		password, err = auth.GeneratePassword()
		if err != nil {
			return SeedResult{}, err
		}
		res.GeneratedPassword = password
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return SeedResult{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		Role:         "admin",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "username", user.Username)
	return res, nil
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
