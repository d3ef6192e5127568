package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sduquej/mercadito-backend/pkg/logger"
)

const rollRetentionDays = 30

type rollRetentionRepo interface {
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RollRetentionJobParams configure the roll attempt cleanup job.
type RollRetentionJobParams struct {
	Logger     *logger.Logger
	Repository rollRetentionRepo
	Retention  int
}

// NewRollRetentionJob builds the job that prunes applied and superseded roll
// attempts past the retention horizon. Active attempts are never deleted.
func NewRollRetentionJob(params RollRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("roll repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = rollRetentionDays
	}
	return &rollRetentionJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type rollRetentionJob struct {
	logg      *logger.Logger
	repo      rollRetentionRepo
	retention int
	now       func() time.Time
}

func (j *rollRetentionJob) Name() string { return "roll-retention" }

func (j *rollRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("roll retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "roll attempt retention cleanup complete")
	return nil
}
