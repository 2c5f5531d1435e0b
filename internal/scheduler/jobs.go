// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/marquee-site/marquee/internal/model"
	"github.com/marquee-site/marquee/internal/service"
)

// UploadSweeper is implemented by service.UploadService.
type UploadSweeper interface {
	SweepStale(ctx context.Context) (service.SweepResult, error)
}

// UploadSweepJobName names the upload sweeper job.
const UploadSweepJobName = "sweep-uploads"

// UploadSweepJob returns an hourly job that removes abandoned partial
// uploads and expired upload targets.
func UploadSweepJob(sweeper UploadSweeper, logger *slog.Logger) Job {
	return Job{
		Name:     UploadSweepJobName,
		Schedule: "@hourly",
		Run: func(ctx context.Context) error {
			res, err := sweeper.SweepStale(ctx)
			if err != nil {
				return err
			}
			if res.PartFiles > 0 || res.ExpiredTargets > 0 {
				logger.Info("swept stale uploads",
					"category", model.AuditCategoryUpload,
					"part_files", res.PartFiles,
					"expired_targets", res.ExpiredTargets,
				)
			}
			return nil
		},
	}
}

// AuditPruner is implemented by service.AuditService.
type AuditPruner interface {
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// AuditPruneJobName names the audit retention job.
const AuditPruneJobName = "prune-audit-events"

// AuditPruneJob returns a daily job that deletes audit events older than
// retention.
func AuditPruneJob(pruner AuditPruner, retention time.Duration, logger *slog.Logger) Job {
	return Job{
		Name:     AuditPruneJobName,
		Schedule: "@daily",
		Run: func(ctx context.Context) error {
			n, err := pruner.DeleteOlderThan(ctx, retention)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned audit events",
					"category", model.AuditCategorySystem,
					"deleted", n,
					"retention", retention.String(),
				)
			}
			return nil
		},
	}
}
