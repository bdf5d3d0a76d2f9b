package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/internal/checkouts"
	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service applies disbursement outcomes to the checkout workflow.
type Service struct {
	repo   checkouts.Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

// NewService builds the refund confirmation service.
func NewService(repo checkouts.Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkouts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{repo: repo, tx: tx, outbox: outboxSvc, logg: logg}, nil
}

// ConfirmDisbursement records the rail's verdict. Replays of an outcome that
// has already been applied are acknowledged without effect.
func (s *Service) ConfirmDisbursement(ctx context.Context, input ConfirmationInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if input.Succeeded && input.DisbursementReference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "disbursement reference required on success")
	}
	if !input.Succeeded && input.FailureReason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "failure reason required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := repo.FindByIDForUpdate(ctx, input.CheckoutID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
		}

		if checkout.Status != enums.CheckoutStatusRefundProcessing {
			if s.alreadyApplied(checkout.Status, input.Succeeded) {
				logCtx := s.logg.WithFields(ctx, map[string]any{
					"checkout_id": checkout.ID.String(),
					"status":      checkout.Status.String(),
				})
				s.logg.Info(logCtx, "disbursement confirmation replayed, skipping")
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting disbursement").
				WithDetails(map[string]any{"current_status": checkout.Status})
		}

		refund, err := repo.FindRefundByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund == nil || refund.Status != enums.RefundStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund is not processing")
		}

		if input.Succeeded {
			return s.applySuccess(ctx, tx, repo, checkout, refund, input)
		}
		return s.applyFailure(ctx, tx, repo, checkout, refund, input)
	})
}

// alreadyApplied reports whether the checkout's status shows this outcome was
// processed on a previous delivery.
func (s *Service) alreadyApplied(status enums.CheckoutStatus, succeeded bool) bool {
	if succeeded {
		return status == enums.CheckoutStatusRefundProcessed || status == enums.CheckoutStatusCompleted
	}
	return status == enums.CheckoutStatusApproved
}

func (s *Service) applySuccess(ctx context.Context, tx *gorm.DB, repo checkouts.Repository, checkout *models.Checkout, refund *models.DepositRefund, input ConfirmationInput) error {
	now := time.Now().UTC()
	if err := repo.UpdateRefund(ctx, refund.ID, map[string]any{
		"status":                 enums.RefundStatusProcessed,
		"disbursement_reference": input.DisbursementReference,
		"processed_at":           now,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark refund processed")
	}

	if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusRefundProcessed); err != nil {
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRefundProcessed,
		AggregateType: enums.AggregateDepositRefund,
		AggregateID:   refund.ID,
		Version:       1,
		Data: payloads.RefundProcessedEvent{
			CheckoutID:            checkout.ID,
			RefundID:              refund.ID,
			Amount:                refund.RefundableAmount,
			DisbursementReference: input.DisbursementReference,
			ProcessedAt:           now,
		},
	})
}

func (s *Service) applyFailure(ctx context.Context, tx *gorm.DB, repo checkouts.Repository, checkout *models.Checkout, refund *models.DepositRefund, input ConfirmationInput) error {
	refundStatus := enums.RefundStatusApproved
	if !input.Retryable {
		// needs corrected disbursement details before another attempt
		refundStatus = enums.RefundStatusFailed
	}
	if err := repo.UpdateRefund(ctx, refund.ID, map[string]any{
		"status":                refundStatus,
		"failure_reason":        input.FailureReason,
		"failure_retryable":     input.Retryable,
		"processing_started_at": nil,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark refund failed")
	}

	if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusApproved); err != nil {
		return err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"checkout_id": checkout.ID.String(),
		"reason":      input.FailureReason,
		"retryable":   input.Retryable,
	})
	s.logg.Warn(logCtx, "disbursement failed")

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRefundFailed,
		AggregateType: enums.AggregateDepositRefund,
		AggregateID:   refund.ID,
		Version:       1,
		Data: payloads.RefundFailedEvent{
			CheckoutID: checkout.ID,
			RefundID:   refund.ID,
			Reason:     input.FailureReason,
			Retryable:  input.Retryable,
			FailedAt:   time.Now().UTC(),
		},
	})
}

func (s *Service) transition(ctx context.Context, tx *gorm.DB, repo checkouts.Repository, checkout *models.Checkout, target enums.CheckoutStatus) error {
	matched, err := repo.UpdateCAS(ctx, checkout.ID, checkout.Version, map[string]any{"status": target})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout status")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "checkout was modified concurrently").
			WithDetails(map[string]any{"checkout_id": checkout.ID})
	}

	from := checkout.Status
	checkout.Status = target
	checkout.Version++

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCheckoutStatusChanged,
		AggregateType: enums.AggregateCheckout,
		AggregateID:   checkout.ID,
		Version:       1,
		Data: payloads.CheckoutStatusChangedEvent{
			CheckoutID: checkout.ID,
			TenantID:   checkout.TenantID,
			PropertyID: checkout.PropertyID,
			FromStatus: from,
			ToStatus:   target,
			ChangedAt:  time.Now().UTC(),
		},
	})
}
