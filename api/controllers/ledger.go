package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/karimnasser/propflow-backend/api/responses"
	"github.com/karimnasser/propflow-backend/api/validators"
	"github.com/karimnasser/propflow-backend/internal/ledger"
	"github.com/karimnasser/propflow-backend/pkg/logger"
)

// TenantOutstanding returns the tenant's open balance broken down by source.
func TenantOutstanding(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		breakdown, err := svc.OutstandingBreakdown(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, breakdown)
	}
}

// TenantInvoices lists the tenant's unpaid invoices.
func TenantInvoices(svc *ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := validators.ParsePathUUID(chi.URLParam(r, "tenantId"), "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoices, err := svc.ListInvoices(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"invoices": invoices})
	}
}
