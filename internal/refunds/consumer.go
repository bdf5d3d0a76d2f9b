package refunds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
)

const disbursementConsumerName = "refund-worker"

// DisbursementOrder is the instruction handed to the payment rail.
type DisbursementOrder struct {
	CheckoutID     uuid.UUID
	RefundID       uuid.UUID
	Amount         decimal.Decimal
	Method         enums.RefundMethod
	BankAccountRef string
	ChequeNumber   string
}

// DisbursementResult is the rail's verdict on a submitted order. A transport
// error is returned separately and retried via redelivery.
type DisbursementResult struct {
	Succeeded     bool
	Reference     string
	FailureReason string
	Retryable     bool
}

type railClient interface {
	Disburse(ctx context.Context, order DisbursementOrder) (*DisbursementResult, error)
}

type confirmer interface {
	ConfirmDisbursement(ctx context.Context, input ConfirmationInput) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer executes disbursement requests against the payment rail and feeds
// the outcome back into the checkout workflow.
type Consumer struct {
	rail    railClient
	svc     confirmer
	manager idempotencyChecker
	logg    *logger.Logger
}

// NewConsumer builds the disbursement consumer.
func NewConsumer(rail railClient, svc confirmer, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if rail == nil {
		return nil, fmt.Errorf("payment rail client required")
	}
	if svc == nil {
		return nil, fmt.Errorf("refund service required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{rail: rail, svc: svc, manager: manager, logg: logg}, nil
}

// Process submits the requested disbursement and records the rail's verdict.
func (c *Consumer) Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"event_id":   envelope.EventID,
		"event_type": eventType,
	})

	if eventType != enums.EventDisbursementRequested {
		c.logg.Info(logCtx, "event not handled by refund worker")
		return nil
	}

	if envelope.EventID == "" {
		return fmt.Errorf("event id missing")
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		return fmt.Errorf("parse event id: %w", err)
	}

	already, err := c.manager.CheckAndMarkProcessed(ctx, disbursementConsumerName, eventID)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return nil
	}

	var payload payloads.DisbursementRequestedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode disbursement request", err)
		_ = c.manager.Delete(ctx, disbursementConsumerName, eventID)
		return err
	}

	result, err := c.rail.Disburse(ctx, DisbursementOrder{
		CheckoutID:     payload.CheckoutID,
		RefundID:       payload.RefundID,
		Amount:         payload.Amount,
		Method:         payload.Method,
		BankAccountRef: payload.BankAccountRef,
		ChequeNumber:   payload.ChequeNumber,
	})
	if err != nil {
		c.logg.Error(logCtx, "payment rail unreachable", err)
		_ = c.manager.Delete(ctx, disbursementConsumerName, eventID)
		return err
	}

	if err := c.svc.ConfirmDisbursement(ctx, ConfirmationInput{
		CheckoutID:            payload.CheckoutID,
		Succeeded:             result.Succeeded,
		DisbursementReference: result.Reference,
		FailureReason:         result.FailureReason,
		Retryable:             result.Retryable,
	}); err != nil {
		c.logg.Error(logCtx, "failed to record disbursement outcome", err)
		_ = c.manager.Delete(ctx, disbursementConsumerName, eventID)
		return err
	}

	c.logg.Info(logCtx, "disbursement outcome recorded")
	return nil
}
