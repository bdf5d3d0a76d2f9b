package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/idempotency"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
)

const checkoutNotificationConsumer = "checkout-notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns workflow events into in-app notifications for the staff
// members involved.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the checkout notification consumer.
func NewConsumer(repo creator, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("notification subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, checkoutNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := c.buildNotification(eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to build notification", err)
		_ = c.idempotency.Delete(ctx, checkoutNotificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		c.logg.Info(logCtx, "event carries no notification recipient")
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, checkoutNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "notification stored")
	return processResult{ack: true}
}

// buildNotification maps an event to a notification, or nil when the event
// has no determinable recipient.
func (c *Consumer) buildNotification(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (*models.Notification, error) {
	switch eventType {
	case enums.EventNotificationRequested:
		var payload payloads.NotificationRequestedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode notification request: %w", err)
		}
		if payload.UserID == uuid.Nil {
			return nil, fmt.Errorf("recipient user id missing")
		}
		notification := &models.Notification{
			UserID:  payload.UserID,
			Type:    payload.Type,
			Title:   payload.Title,
			Message: payload.Body,
		}
		if payload.CheckoutID != nil {
			notification.Link = stringPtr(fmt.Sprintf("/checkouts/%s", payload.CheckoutID))
		}
		return notification, nil

	case enums.EventCheckoutStatusChanged:
		if envelope.Actor == nil || envelope.Actor.UserID == uuid.Nil {
			return nil, nil
		}
		var payload payloads.CheckoutStatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode status change: %w", err)
		}
		return &models.Notification{
			UserID:  envelope.Actor.UserID,
			Type:    enums.NotificationTypeCheckoutUpdate,
			Title:   "Checkout updated",
			Message: fmt.Sprintf("Checkout moved from %s to %s.", payload.FromStatus, payload.ToStatus),
			Link:    stringPtr(fmt.Sprintf("/checkouts/%s", payload.CheckoutID)),
		}, nil

	case enums.EventRefundApproved:
		if envelope.Actor == nil || envelope.Actor.UserID == uuid.Nil {
			return nil, nil
		}
		var payload payloads.RefundApprovedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, fmt.Errorf("decode refund approval: %w", err)
		}
		return &models.Notification{
			UserID:  envelope.Actor.UserID,
			Type:    enums.NotificationTypeRefundAlert,
			Title:   "Refund approved",
			Message: fmt.Sprintf("Refund of %s approved for disbursement.", payload.RefundableAmount.StringFixed(2)),
			Link:    stringPtr(fmt.Sprintf("/checkouts/%s", payload.CheckoutID)),
		}, nil

	default:
		return nil, nil
	}
}

func stringPtr(value string) *string {
	return &value
}
