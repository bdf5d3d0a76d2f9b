package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// CheckoutInitiatedEvent signals a tenant has given notice and a checkout opened.
type CheckoutInitiatedEvent struct {
	CheckoutID      uuid.UUID            `json:"checkout_id"`
	TenantID        uuid.UUID            `json:"tenant_id"`
	PropertyID      uuid.UUID            `json:"property_id"`
	UnitID          uuid.UUID            `json:"unit_id"`
	Reason          enums.CheckoutReason `json:"reason"`
	ExpectedMoveOut time.Time            `json:"expected_move_out"`
}

// CheckoutStatusChangedEvent is emitted on every workflow transition.
type CheckoutStatusChangedEvent struct {
	CheckoutID uuid.UUID            `json:"checkout_id"`
	TenantID   uuid.UUID            `json:"tenant_id"`
	PropertyID uuid.UUID            `json:"property_id"`
	FromStatus enums.CheckoutStatus `json:"from_status"`
	ToStatus   enums.CheckoutStatus `json:"to_status"`
	ChangedAt  time.Time            `json:"changed_at"`
}

// CheckoutCompletedEvent surfaces the final settlement shape when a checkout closes.
type CheckoutCompletedEvent struct {
	CheckoutID     uuid.UUID       `json:"checkout_id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	PropertyID     uuid.UUID       `json:"property_id"`
	UnitID         uuid.UUID       `json:"unit_id"`
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	TenantOwes     bool            `json:"tenant_owes"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// InspectionRecordedEvent is emitted when an inspector files a result.
type InspectionRecordedEvent struct {
	CheckoutID      uuid.UUID              `json:"checkout_id"`
	InspectionID    uuid.UUID              `json:"inspection_id"`
	InspectorUserID uuid.UUID              `json:"inspector_user_id"`
	Result          enums.InspectionResult `json:"result"`
	CompletedAt     time.Time              `json:"completed_at"`
}

// InspectionFailedEvent flags a unit needing remediation before re-letting.
type InspectionFailedEvent struct {
	CheckoutID   uuid.UUID `json:"checkout_id"`
	InspectionID uuid.UUID `json:"inspection_id"`
	PropertyID   uuid.UUID `json:"property_id"`
	UnitID       uuid.UUID `json:"unit_id"`
	FailedItems  []string  `json:"failed_items,omitempty"`
}

// DepositCalculatedEvent carries the computed refund breakdown.
type DepositCalculatedEvent struct {
	CheckoutID        uuid.UUID       `json:"checkout_id"`
	RefundID          uuid.UUID       `json:"refund_id"`
	DepositAmount     decimal.Decimal `json:"deposit_amount"`
	TotalDeductions   decimal.Decimal `json:"total_deductions"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	RefundableAmount  decimal.Decimal `json:"refundable_amount"`
	TenantOwes        bool            `json:"tenant_owes"`
	ApprovalRequired  bool            `json:"approval_required"`
}

// RefundApprovedEvent records a manager sign-off above the threshold.
type RefundApprovedEvent struct {
	CheckoutID       uuid.UUID       `json:"checkout_id"`
	RefundID         uuid.UUID       `json:"refund_id"`
	RefundableAmount decimal.Decimal `json:"refundable_amount"`
	ApprovedBy       uuid.UUID       `json:"approved_by"`
	ApprovedAt       time.Time       `json:"approved_at"`
}

// DisbursementRequestedEvent asks the payment rail to pay the tenant out.
type DisbursementRequestedEvent struct {
	CheckoutID     uuid.UUID          `json:"checkout_id"`
	RefundID       uuid.UUID          `json:"refund_id"`
	TenantID       uuid.UUID          `json:"tenant_id"`
	Amount         decimal.Decimal    `json:"amount"`
	Method         enums.RefundMethod `json:"method"`
	BankAccountRef string             `json:"bank_account_ref,omitempty"`
	ChequeNumber   string             `json:"cheque_number,omitempty"`
}

// RefundProcessedEvent confirms the disbursement settled.
type RefundProcessedEvent struct {
	CheckoutID            uuid.UUID       `json:"checkout_id"`
	RefundID              uuid.UUID       `json:"refund_id"`
	Amount                decimal.Decimal `json:"amount"`
	DisbursementReference string          `json:"disbursement_reference"`
	ProcessedAt           time.Time       `json:"processed_at"`
}

// RefundFailedEvent reports a disbursement rejection from the payment rail.
type RefundFailedEvent struct {
	CheckoutID uuid.UUID `json:"checkout_id"`
	RefundID   uuid.UUID `json:"refund_id"`
	Reason     string    `json:"reason"`
	Retryable  bool      `json:"retryable"`
	FailedAt   time.Time `json:"failed_at"`
}

// SettlementDueEvent is emitted when deductions exceed the deposit and the
// tenant must be invoiced for the difference.
type SettlementDueEvent struct {
	CheckoutID uuid.UUID       `json:"checkout_id"`
	RefundID   uuid.UUID       `json:"refund_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
}

// RefundStuckEvent flags a checkout parked in refund_processing past the
// confirmation timeout. The sweep never advances the state itself.
type RefundStuckEvent struct {
	CheckoutID     uuid.UUID `json:"checkout_id"`
	RefundID       uuid.UUID `json:"refund_id"`
	ProcessingFor  string    `json:"processing_for"`
	StartedAt      time.Time `json:"started_at"`
	DetectedAt     time.Time `json:"detected_at"`
	TimeoutApplied string    `json:"timeout_applied"`
}

// PDCStatusChangedEvent tracks post-dated cheque lifecycle moves.
type PDCStatusChangedEvent struct {
	ChequeID   uuid.UUID       `json:"cheque_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	FromStatus enums.PDCStatus `json:"from_status"`
	ToStatus   enums.PDCStatus `json:"to_status"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
}

// TenantMovingOutEvent tells downstream systems to start unit turnover prep.
type TenantMovingOutEvent struct {
	CheckoutID      uuid.UUID `json:"checkout_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	PropertyID      uuid.UUID `json:"property_id"`
	UnitID          uuid.UUID `json:"unit_id"`
	ExpectedMoveOut time.Time `json:"expected_move_out"`
}

// NotificationRequestedEvent tells the notification consumer to fan a message out.
type NotificationRequestedEvent struct {
	UserID     uuid.UUID              `json:"user_id"`
	CheckoutID *uuid.UUID             `json:"checkout_id,omitempty"`
	Type       enums.NotificationType `json:"type"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
}
