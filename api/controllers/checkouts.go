package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/api/responses"
	"github.com/karimnasser/propflow-backend/api/validators"
	"github.com/karimnasser/propflow-backend/internal/checkouts"
	"github.com/karimnasser/propflow-backend/internal/deposits"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/logger"
	"github.com/karimnasser/propflow-backend/pkg/pagination"
	"github.com/karimnasser/propflow-backend/pkg/types"
)

type initiateCheckoutRequest struct {
	TenantID        uuid.UUID `json:"tenant_id" validate:"required"`
	PropertyID      uuid.UUID `json:"property_id" validate:"required"`
	UnitID          uuid.UUID `json:"unit_id" validate:"required"`
	Reason          string    `json:"reason" validate:"required"`
	NoticeDate      time.Time `json:"notice_date" validate:"required"`
	ExpectedMoveOut time.Time `json:"expected_move_out" validate:"required"`
	Notes           *string   `json:"notes,omitempty"`
}

// InitiateCheckout opens a checkout for a tenant who gave notice.
func InitiateCheckout(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req initiateCheckoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reason, err := enums.ParseCheckoutReason(req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout reason"))
			return
		}

		checkout, err := svc.Initiate(r.Context(), checkouts.InitiateInput{
			TenantID:        req.TenantID,
			PropertyID:      req.PropertyID,
			UnitID:          req.UnitID,
			Reason:          reason,
			NoticeDate:      req.NoticeDate,
			ExpectedMoveOut: req.ExpectedMoveOut,
			Notes:           req.Notes,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, checkout)
	}
}

// ListCheckouts returns a filtered, cursor-paginated checkout listing.
func ListCheckouts(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		var filters checkouts.ListFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseCheckoutStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("tenant_id")); raw != "" {
			tenantID, err := validators.ParsePathUUID(raw, "tenant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.TenantID = &tenantID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("property_id")); raw != "" {
			propertyID, err := validators.ParsePathUUID(raw, "property_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.PropertyID = &propertyID
		}

		list, err := svc.ListCheckouts(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// CheckoutDetail returns the checkout with its inspection and refund.
func CheckoutDetail(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), checkoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type scheduleInspectionRequest struct {
	InspectorUserID uuid.UUID `json:"inspector_user_id" validate:"required"`
	ScheduledFor    time.Time `json:"scheduled_for" validate:"required"`
}

// ScheduleInspection books the move-out inspection slot.
func ScheduleInspection(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req scheduleInspectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ScheduleInspection(r.Context(), checkouts.ScheduleInspectionInput{
			CheckoutID:      checkoutID,
			InspectorUserID: req.InspectorUserID,
			ScheduledFor:    req.ScheduledFor,
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "scheduled"})
	}
}

type recordInspectionRequest struct {
	Result    string          `json:"result" validate:"required"`
	Checklist types.Checklist `json:"checklist" validate:"required,min=1,dive"`
	Photos    types.PhotoRefs `json:"photos,omitempty"`
}

// RecordInspection files the inspection outcome.
func RecordInspection(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordInspectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := enums.ParseInspectionResult(req.Result)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inspection result"))
			return
		}

		err = svc.SaveInspection(r.Context(), checkouts.SaveInspectionInput{
			CheckoutID: checkoutID,
			Result:     result,
			Checklist:  req.Checklist,
			Photos:     req.Photos,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}

type deductionRequest struct {
	Category      string          `json:"category" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Justification string          `json:"justification" validate:"required"`
}

type depositCalculationRequest struct {
	DepositAmount decimal.Decimal    `json:"deposit_amount" validate:"required"`
	Deductions    []deductionRequest `json:"deductions" validate:"dive"`
}

// SaveDepositCalculation records the deposit math and routes the refund
// through the approval gate.
func SaveDepositCalculation(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req depositCalculationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deductions := make([]deposits.DeductionInput, 0, len(req.Deductions))
		for _, d := range req.Deductions {
			category, err := enums.ParseDeductionCategory(d.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid deduction category"))
				return
			}
			deductions = append(deductions, deposits.DeductionInput{
				Category:      category,
				Amount:        d.Amount,
				Justification: d.Justification,
			})
		}

		calculation, err := svc.SaveDepositCalculation(r.Context(), checkouts.SaveDepositCalculationInput{
			CheckoutID:    checkoutID,
			DepositAmount: req.DepositAmount,
			Deductions:    deductions,
			Actor:         actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, calculation)
	}
}

// ApproveRefund records the elevated sign-off on a pending refund.
func ApproveRefund(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ApproveRefund(r.Context(), checkouts.ApproveRefundInput{
			CheckoutID: checkoutID,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "approved"})
	}
}

type processRefundRequest struct {
	Method         string  `json:"method" validate:"required"`
	BankAccountRef *string `json:"bank_account_ref,omitempty"`
	ChequeNumber   *string `json:"cheque_number,omitempty"`
}

// ProcessRefund hands the approved refund to the disbursement rail.
func ProcessRefund(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req processRefundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParseRefundMethod(req.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund method"))
			return
		}

		err = svc.ProcessRefund(r.Context(), checkouts.ProcessRefundInput{
			CheckoutID:     checkoutID,
			Method:         method,
			BankAccountRef: req.BankAccountRef,
			ChequeNumber:   req.ChequeNumber,
			Actor:          actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "processing"})
	}
}

// CompleteCheckout closes out a checkout whose money has settled.
func CompleteCheckout(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Complete(r.Context(), checkouts.CompleteInput{CheckoutID: checkoutID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}

type holdCheckoutRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// HoldCheckout pauses a checkout, remembering where it was.
func HoldCheckout(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req holdCheckoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Hold(r.Context(), checkouts.HoldInput{CheckoutID: checkoutID, Reason: req.Reason, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "on_hold"})
	}
}

// ResumeCheckout returns a held checkout to its prior status.
func ResumeCheckout(svc checkouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkoutID, err := validators.ParsePathUUID(chi.URLParam(r, "checkoutId"), "checkoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.Resume(r.Context(), checkouts.ResumeInput{CheckoutID: checkoutID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "resumed"})
	}
}
