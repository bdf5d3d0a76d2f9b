package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/joho/godotenv"

	"github.com/karimnasser/propflow-backend/internal/checkouts"
	"github.com/karimnasser/propflow-backend/internal/refunds"
	"github.com/karimnasser/propflow-backend/pkg/config"
	"github.com/karimnasser/propflow-backend/pkg/db"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/migrate"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/idempotency"
	"github.com/karimnasser/propflow-backend/pkg/pubsub"
	"github.com/karimnasser/propflow-backend/pkg/redis"
)

// Processed-event markers outlive the redelivery horizon of the subscription.
const idempotencyTTL = 7 * 24 * time.Hour

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "refund-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "refund-worker"

	logg = logger.New(logger.Options{
		ServiceName: "refund-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	err = migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	checkoutRepo := checkouts.NewRepository(dbClient.DB())
	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	refundService, err := refunds.NewService(checkoutRepo, dbClient, outboxSvc, logg)
	requireResource(ctx, logg, "refund service", err)

	rail, err := refunds.NewHTTPRail(cfg.Rail)
	requireResource(ctx, logg, "payment rail client", err)

	manager, err := idempotency.NewManager(redisClient, idempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := refunds.NewConsumer(rail, refundService, manager, logg)
	requireResource(ctx, logg, "disbursement consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "refund worker ready")

	subscription := pubsubClient.DisbursementSubscription()
	if subscription == nil {
		logg.Error(runCtx, "disbursement subscription not configured", errors.New("nil subscriber"))
		os.Exit(1)
	}

	err = subscription.Receive(runCtx, func(msgCtx context.Context, msg *gcppubsub.Message) {
		if err := handleMessage(msgCtx, consumer, msg); err != nil {
			logg.Error(logg.WithField(msgCtx, "message_id", msg.ID), "disbursement message failed", err)
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "refund worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(runCtx, "refund worker shutting down gracefully")
}

func handleMessage(ctx context.Context, consumer *refunds.Consumer, msg *gcppubsub.Message) error {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	return consumer.Process(ctx, eventType, envelope)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
