package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/api/responses"
	"github.com/karimnasser/propflow-backend/api/validators"
	"github.com/karimnasser/propflow-backend/internal/refunds"
	"github.com/karimnasser/propflow-backend/pkg/config"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/logger"
)

type disbursementWebhookRequest struct {
	CheckoutID            uuid.UUID `json:"checkout_id" validate:"required"`
	Succeeded             bool      `json:"succeeded"`
	DisbursementReference string    `json:"disbursement_reference,omitempty"`
	FailureReason         string    `json:"failure_reason,omitempty"`
	Retryable             bool      `json:"retryable,omitempty"`
}

// DisbursementWebhook receives the payment rail's callback about a transfer.
// It converges on the same confirmation path as the subscription consumer, so
// whichever signal arrives first wins and the other becomes a no-op.
func DisbursementWebhook(svc *refunds.Service, cfg config.RailConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Rail-Api-Key")
		if cfg.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook credentials"))
			return
		}

		var req disbursementWebhookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.ConfirmDisbursement(r.Context(), refunds.ConfirmationInput{
			CheckoutID:            req.CheckoutID,
			Succeeded:             req.Succeeded,
			DisbursementReference: req.DisbursementReference,
			FailureReason:         req.FailureReason,
			Retryable:             req.Retryable,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "acknowledged"})
	}
}
