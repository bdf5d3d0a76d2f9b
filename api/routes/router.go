package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karimnasser/propflow-backend/api/controllers"
	"github.com/karimnasser/propflow-backend/api/middleware"
	"github.com/karimnasser/propflow-backend/internal/checkouts"
	"github.com/karimnasser/propflow-backend/internal/ledger"
	"github.com/karimnasser/propflow-backend/internal/notifications"
	"github.com/karimnasser/propflow-backend/internal/pdc"
	"github.com/karimnasser/propflow-backend/internal/refunds"
	"github.com/karimnasser/propflow-backend/pkg/config"
	"github.com/karimnasser/propflow-backend/pkg/db"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface for the checkout backend.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	checkoutService checkouts.Service,
	refundService *refunds.Service,
	pdcService *pdc.Service,
	ledgerService *ledger.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisClient))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/disbursement", controllers.DisbursementWebhook(refundService, cfg.Rail, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/checkouts", func(r chi.Router) {
			r.Post("/", controllers.InitiateCheckout(checkoutService, logg))
			r.Get("/", controllers.ListCheckouts(checkoutService, logg))
			r.Route("/{checkoutId}", func(r chi.Router) {
				r.Get("/", controllers.CheckoutDetail(checkoutService, logg))
				r.Post("/inspection/schedule", controllers.ScheduleInspection(checkoutService, logg))
				r.Post("/inspection", controllers.RecordInspection(checkoutService, logg))
				r.Post("/deposit-calculation", controllers.SaveDepositCalculation(checkoutService, logg))
				r.With(middleware.RequireRole(logg, "manager", "admin")).
					Post("/approve", controllers.ApproveRefund(checkoutService, logg))
				r.Post("/refund/process", controllers.ProcessRefund(checkoutService, logg))
				r.Post("/complete", controllers.CompleteCheckout(checkoutService, logg))
				r.Post("/hold", controllers.HoldCheckout(checkoutService, logg))
				r.Post("/resume", controllers.ResumeCheckout(checkoutService, logg))
			})
		})

		r.Route("/cheques", func(r chi.Router) {
			r.Post("/", controllers.RegisterCheque(pdcService, logg))
			r.Route("/{chequeId}", func(r chi.Router) {
				r.Post("/deposit", controllers.DepositCheque(pdcService, logg))
				r.Post("/clear", controllers.ClearCheque(pdcService, logg))
				r.With(middleware.RequireRole(logg, "manager", "admin")).
					Post("/bounce", controllers.BounceCheque(pdcService, logg))
			})
		})

		r.Route("/tenants/{tenantId}", func(r chi.Router) {
			r.Get("/cheques", controllers.ListTenantCheques(pdcService, logg))
			r.Get("/outstanding", controllers.TenantOutstanding(ledgerService, logg))
			r.Get("/invoices", controllers.TenantInvoices(ledgerService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
