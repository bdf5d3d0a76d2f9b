package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/karimnasser/propflow-backend/pkg/logger"
)

func TestPDCDueJobSweepsAtCurrentTime(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	sweeper := &fakeChequeSweeper{flipped: 5}
	job := newPDCDueJob(t, sweeper)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sweeper.lastCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, sweeper.lastCutoff)
	}
}

func TestPDCDueJobPropagatesErrors(t *testing.T) {
	sweeper := &fakeChequeSweeper{err: errors.New("boom")}
	job := newPDCDueJob(t, sweeper)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newPDCDueJob(t *testing.T, sweeper *fakeChequeSweeper) *pdcDueJob {
	t.Helper()
	jobIface, err := NewPDCDueJob(PDCDueJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewPDCDueJob: %v", err)
	}
	job, ok := jobIface.(*pdcDueJob)
	if !ok {
		t.Fatalf("expected pdcDueJob, got %T", jobIface)
	}
	return job
}

type fakeChequeSweeper struct {
	lastCutoff time.Time
	flipped    int
	err        error
}

func (f *fakeChequeSweeper) SweepDue(ctx context.Context, cutoff time.Time) (int, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.flipped, nil
}
