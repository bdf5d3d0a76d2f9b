package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/karimnasser/propflow-backend/pkg/logger"
)

type PDCDueJobParams struct {
	Logger  *logger.Logger
	Sweeper dueChequeSweeper
}

type dueChequeSweeper interface {
	SweepDue(ctx context.Context, cutoff time.Time) (int, error)
}

func NewPDCDueJob(params PDCDueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("cheque sweeper required")
	}
	return &pdcDueJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		now:     time.Now,
	}, nil
}

type pdcDueJob struct {
	logg    *logger.Logger
	sweeper dueChequeSweeper
	now     func() time.Time
}

func (j *pdcDueJob) Name() string { return "pdc-due" }

func (j *pdcDueJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	flipped, err := j.sweeper.SweepDue(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("pdc due sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"cheques_flipped": flipped,
	})
	j.logg.Info(logCtx, "post-dated cheque sweep complete")
	return nil
}
