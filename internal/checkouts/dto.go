package checkouts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/internal/deposits"
	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/types"
)

// Actor identifies the authenticated staff member performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// InitiateInput opens a new checkout for a tenant.
type InitiateInput struct {
	TenantID        uuid.UUID
	PropertyID      uuid.UUID
	UnitID          uuid.UUID
	Reason          enums.CheckoutReason
	NoticeDate      time.Time
	ExpectedMoveOut time.Time
	Notes           *string
	Actor           Actor
}

// ScheduleInspectionInput books the move-out inspection.
type ScheduleInspectionInput struct {
	CheckoutID      uuid.UUID
	InspectorUserID uuid.UUID
	ScheduledFor    time.Time
	Actor           Actor
}

// SaveInspectionInput records (or re-records) the inspection outcome.
type SaveInspectionInput struct {
	CheckoutID uuid.UUID
	Result     enums.InspectionResult
	Checklist  types.Checklist
	Photos     types.PhotoRefs
	Actor      Actor
}

// SaveDepositCalculationInput captures the money side of a checkout.
type SaveDepositCalculationInput struct {
	CheckoutID    uuid.UUID
	DepositAmount decimal.Decimal
	Deductions    []deposits.DeductionInput
	Actor         Actor
}

// ApproveRefundInput records an elevated sign-off.
type ApproveRefundInput struct {
	CheckoutID uuid.UUID
	Actor      Actor
}

// ProcessRefundInput starts the disbursement.
type ProcessRefundInput struct {
	CheckoutID     uuid.UUID
	Method         enums.RefundMethod
	BankAccountRef *string
	ChequeNumber   *string
	Actor          Actor
}

// CompleteInput closes out a checkout.
type CompleteInput struct {
	CheckoutID uuid.UUID
	Actor      Actor
}

// HoldInput pauses a checkout, remembering where it was.
type HoldInput struct {
	CheckoutID uuid.UUID
	Reason     string
	Actor      Actor
}

// ResumeInput returns a held checkout to its prior status.
type ResumeInput struct {
	CheckoutID uuid.UUID
	Actor      Actor
}

// ListFilters describe the supported checkout list inputs.
type ListFilters struct {
	Status     *enums.CheckoutStatus
	TenantID   *uuid.UUID
	PropertyID *uuid.UUID
}

// Detail is the full checkout view returned by reads.
type Detail struct {
	Checkout   models.Checkout       `json:"checkout"`
	Inspection *models.Inspection    `json:"inspection,omitempty"`
	Refund     *models.DepositRefund `json:"refund,omitempty"`
}

// Summary is the condensed row returned by list queries.
type Summary struct {
	ID              uuid.UUID            `json:"id"`
	CheckoutNumber  int64                `json:"checkout_number"`
	TenantID        uuid.UUID            `json:"tenant_id"`
	PropertyID      uuid.UUID            `json:"property_id"`
	UnitID          uuid.UUID            `json:"unit_id"`
	Status          enums.CheckoutStatus `json:"status"`
	Reason          enums.CheckoutReason `json:"reason"`
	ExpectedMoveOut time.Time            `json:"expected_move_out"`
	CreatedAt       time.Time            `json:"created_at"`
}

// List wraps the paginated checkouts plus the next page cursor.
type List struct {
	Checkouts  []Summary `json:"checkouts"`
	NextCursor string    `json:"next_cursor,omitempty"`
}
