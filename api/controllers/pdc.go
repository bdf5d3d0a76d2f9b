package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/api/responses"
	"github.com/karimnasser/propflow-backend/api/validators"
	"github.com/karimnasser/propflow-backend/internal/pdc"
	"github.com/karimnasser/propflow-backend/pkg/logger"
)

type registerChequeRequest struct {
	TenantID     uuid.UUID       `json:"tenant_id" validate:"required"`
	PropertyID   uuid.UUID       `json:"property_id" validate:"required"`
	ChequeNumber string          `json:"cheque_number" validate:"required"`
	BankName     string          `json:"bank_name" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	DueDate      time.Time       `json:"due_date" validate:"required"`
}

// RegisterCheque stores a post-dated cheque received at lease signing.
func RegisterCheque(svc *pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerChequeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cheque, err := svc.Register(r.Context(), pdc.RegisterInput{
			TenantID:     req.TenantID,
			PropertyID:   req.PropertyID,
			ChequeNumber: req.ChequeNumber,
			BankName:     req.BankName,
			Amount:       req.Amount,
			DueDate:      req.DueDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cheque)
	}
}

// DepositCheque marks a cheque as presented to the bank.
func DepositCheque(svc *pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chequeID, err := validators.ParsePathUUID(chi.URLParam(r, "chequeId"), "chequeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Deposit(r.Context(), chequeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deposited"})
	}
}

// ClearCheque records a cheque that settled successfully.
func ClearCheque(svc *pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chequeID, err := validators.ParsePathUUID(chi.URLParam(r, "chequeId"), "chequeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Clear(r.Context(), chequeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

type bounceChequeRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// BounceCheque records a cheque the bank returned unpaid.
func BounceCheque(svc *pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chequeID, err := validators.ParsePathUUID(chi.URLParam(r, "chequeId"), "chequeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req bounceChequeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Bounce(r.Context(), chequeID, req.Reason); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "bounced"})
	}
}

// ListTenantCheques returns every cheque on file for a tenant.
func ListTenantCheques(svc *pdc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cheques, err := svc.ListByTenant(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cheques": cheques})
	}
}
