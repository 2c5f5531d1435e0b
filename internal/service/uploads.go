// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/store"
)

const (
	// DefaultUploadDir is used when no uploads directory is configured.
	DefaultUploadDir = "./uploads"

	// UploadTargetTTL is how long a minted upload id accepts its PUT.
	UploadTargetTTL = time.Hour

	// StalePartAge is the age after which the sweeper removes .part files.
	StalePartAge = 24 * time.Hour

	// ObjectPathPrefix is the public path under which uploads are served.
	ObjectPathPrefix = "/uploads/"

	partSuffix = ".part"
)

var (
	// ErrUploadNotFound is returned for unknown, expired, completed or
	// malformed upload ids.
	ErrUploadNotFound = errors.New("upload target not found")

	// ErrUploadInProgress is returned when another PUT for the same id is
	// still streaming.
	ErrUploadInProgress = errors.New("upload already in progress")
)

// UploadService implements the two-phase upload handshake.
type UploadService struct {
	queries *store.Queries
	dir     string
	now     func() time.Time
}

// NewUploadService creates an UploadService storing files in dir.
func NewUploadService(db *sql.DB, dir string) *UploadService {
	if dir == "" {
		dir = DefaultUploadDir
	}
	return &UploadService{
		queries: store.New(db),
		dir:     dir,
		now:     time.Now,
	}
}

// Dir returns the uploads directory.
func (s *UploadService) Dir() string { return s.dir }

// ObjectPath returns the public path of an upload id.
func ObjectPath(id string) string { return ObjectPathPrefix + id }

// RequestTarget mints a new upload id and records its pending target.
func (s *UploadService) RequestTarget(ctx context.Context, req model.UploadRequest) (store.UploadTarget, error) {
	now := s.now()
	target, err := s.queries.CreateUploadTarget(ctx, store.CreateUploadTargetParams{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		CreatedAt:   now,
		ExpiresAt:   now.Add(UploadTargetTTL),
	})
	if err != nil {
		return store.UploadTarget{}, fmt.Errorf("creating upload target: %w", err)
	}
	return target, nil
}

// canonicalID accepts only the canonical lowercase UUID form so a single
// upload cannot be reached under several names.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return "", false
	}
	return id, true
}

// Receive streams body into the file for id. The data goes to a hidden
// .part file which is synced, then the target is claimed in the database
// and only the claiming request renames its file into place. Readers never
// see a truncated upload and a request that loses the claim never touches
// the stored file. It returns the object path and the number of bytes
// written.
func (s *UploadService) Receive(ctx context.Context, id string, body io.Reader) (string, int64, error) {
	id, ok := canonicalID(id)
	if !ok {
		return "", 0, ErrUploadNotFound
	}

	target, err := s.queries.GetUploadTarget(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, ErrUploadNotFound
		}
		return "", 0, fmt.Errorf("loading upload target: %w", err)
	}
	if target.CompletedAt.Valid || !s.now().Before(target.ExpiresAt) {
		return "", 0, ErrUploadNotFound
	}

	tmpPath := filepath.Join(s.dir, "."+id+partSuffix)
	finalPath := filepath.Join(s.dir, id)

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", 0, ErrUploadInProgress
		}
		return "", 0, fmt.Errorf("creating temp file: %w", err)
	}

	n, err := io.Copy(f, body)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", n, fmt.Errorf("writing upload %s: %w", id, err)
	}

	if _, err := s.queries.CompleteUploadTarget(ctx, store.CompleteUploadTargetParams{
		CompletedAt: s.now(),
		ID:          id,
	}); err != nil {
		_ = os.Remove(tmpPath)
		if errors.Is(err, sql.ErrNoRows) {
			return "", n, ErrUploadNotFound
		}
		return "", n, fmt.Errorf("completing upload target %s: %w", id, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		// Hand the target back so the client can retry.
		if _, rerr := s.queries.ReopenUploadTarget(context.WithoutCancel(ctx), id); rerr != nil {
			err = errors.Join(err, fmt.Errorf("reopening upload target: %w", rerr))
		}
		return "", n, fmt.Errorf("finalizing upload %s: %w", id, err)
	}

	return ObjectPath(id), n, nil
}

// Open returns the stored file for a completed upload. The caller closes it.
func (s *UploadService) Open(ctx context.Context, id string) (*os.File, fs.FileInfo, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, nil, ErrUploadNotFound
	}

	target, err := s.queries.GetUploadTarget(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrUploadNotFound
		}
		return nil, nil, fmt.Errorf("loading upload target: %w", err)
	}
	if !target.CompletedAt.Valid {
		return nil, nil, ErrUploadNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrUploadNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// SweepResult reports what a sweep removed.
type SweepResult struct {
	PartFiles      int
	ExpiredTargets int64
}

// SweepStale removes .part files older than StalePartAge and deletes
// expired targets that never completed.
func (s *UploadService) SweepStale(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()

	entries, err := os.ReadDir(s.dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return res, fmt.Errorf("reading uploads dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, ".") || !strings.HasSuffix(name, partSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < StalePartAge {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err == nil {
			res.PartFiles++
		}
	}

	n, err := s.queries.DeleteExpiredUploadTargets(ctx, now)
	if err != nil {
		return res, fmt.Errorf("deleting expired upload targets: %w", err)
	}
	res.ExpiredTargets = n
	return res, nil
}
