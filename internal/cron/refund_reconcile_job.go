package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/metrics"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
)

const defaultConfirmationTimeout = 48 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type staleRefundLister interface {
	ListStaleProcessingRefunds(ctx context.Context, cutoff time.Time) ([]models.DepositRefund, error)
}

type outboxDeduper interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type RefundReconcileJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository staleRefundLister
	Outbox     outboxDeduper
	Metrics    *metrics.WorkflowMetrics
	Timeout    time.Duration
}

func NewRefundReconcileJob(params RefundReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultConfirmationTimeout
	}
	return &refundReconcileJob{
		logg:    params.Logger,
		db:      params.DB,
		repo:    params.Repository,
		outbox:  params.Outbox,
		metrics: params.Metrics,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

type refundReconcileJob struct {
	logg    *logger.Logger
	db      txRunner
	repo    staleRefundLister
	outbox  outboxDeduper
	metrics *metrics.WorkflowMetrics
	timeout time.Duration
	now     func() time.Time
}

func (j *refundReconcileJob) Name() string { return "refund-reconcile" }

// Run flags refunds parked in processing past the confirmation timeout. The
// sweep only raises alerts; operators decide whether to fail or re-drive the
// disbursement.
func (j *refundReconcileJob) Run(ctx context.Context) error {
	detectedAt := j.now().UTC()
	cutoff := detectedAt.Add(-j.timeout)
	stale, err := j.repo.ListStaleProcessingRefunds(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale refunds: %w", err)
	}
	if j.metrics != nil {
		j.metrics.SetStaleProcessing(int64(len(stale)))
	}
	if len(stale) == 0 {
		j.logg.Info(ctx, "no refunds stuck in processing")
		return nil
	}

	// Each refund flags in its own transaction so one bad row cannot block
	// the rest of the sweep.
	var flagged int
	var errs []error
	for _, refund := range stale {
		if refund.ProcessingStartedAt == nil {
			continue
		}
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.flag(ctx, tx, refund, detectedAt)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("flag refund %s: %w", refund.ID, err))
			continue
		}
		flagged++
	}
	if combined := multierr.Combine(errs...); combined != nil {
		return fmt.Errorf("refund reconcile: %w", combined)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"timeout":         j.timeout.String(),
		"stale_refunds":   len(stale),
		"flagged_refunds": flagged,
	})
	j.logg.Warn(logCtx, "refunds stuck in processing flagged")
	return nil
}

func (j *refundReconcileJob) flag(ctx context.Context, tx *gorm.DB, refund models.DepositRefund, detectedAt time.Time) error {
	startedAt := refund.ProcessingStartedAt.UTC()
	err := j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRefundStuckInProcessing,
		AggregateType: enums.AggregateCheckout,
		AggregateID:   refund.CheckoutID,
		Data: payloads.RefundStuckEvent{
			CheckoutID:     refund.CheckoutID,
			RefundID:       refund.ID,
			ProcessingFor:  detectedAt.Sub(startedAt).String(),
			StartedAt:      startedAt,
			DetectedAt:     detectedAt,
			TimeoutApplied: j.timeout.String(),
		},
		Version: 1,
	})
	if err != nil {
		return err
	}
	if refund.ApprovedBy == nil {
		return nil
	}
	checkoutID := refund.CheckoutID
	return j.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventNotificationRequested,
		AggregateType: enums.AggregateNotification,
		AggregateID:   refund.CheckoutID,
		Data: payloads.NotificationRequestedEvent{
			UserID:     *refund.ApprovedBy,
			CheckoutID: &checkoutID,
			Type:       enums.NotificationTypeReconciliation,
			Title:      "Refund stuck in processing",
			Body: fmt.Sprintf("Disbursement for checkout %s has been processing for %s without confirmation.",
				refund.CheckoutID, detectedAt.Sub(startedAt).Round(time.Minute)),
		},
		Version: 1,
	})
}
