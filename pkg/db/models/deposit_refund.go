package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// DepositRefund is the money side of a checkout: the original security
// deposit, its deductions, and the computed refundable amount. The refundable
// amount is always recomputed from the inputs, never hand-edited.
type DepositRefund struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutID uuid.UUID `gorm:"column:checkout_id;type:uuid;not null;uniqueIndex"`

	DepositAmount     decimal.Decimal `gorm:"column:deposit_amount;type:numeric(12,2);not null"`
	OutstandingAmount decimal.Decimal `gorm:"column:outstanding_amount;type:numeric(12,2);not null"`
	RefundableAmount  decimal.Decimal `gorm:"column:refundable_amount;type:numeric(12,2);not null"`
	TenantOwes        bool            `gorm:"column:tenant_owes;not null;default:false"`
	AmountOwed        decimal.Decimal `gorm:"column:amount_owed;type:numeric(12,2);not null;default:0"`

	Status enums.RefundStatus  `gorm:"column:status;type:refund_status;not null;default:'pending'"`
	Method *enums.RefundMethod `gorm:"column:method;type:refund_method"`

	// Method-specific disbursement parameters.
	BankAccountRef *string `gorm:"column:bank_account_ref"`
	ChequeNumber   *string `gorm:"column:cheque_number"`

	// DisbursementReference is the rail-side transaction id / cheque number
	// recorded once the disbursement is confirmed.
	DisbursementReference *string `gorm:"column:disbursement_reference"`

	ApprovalRequired bool       `gorm:"column:approval_required;not null;default:false"`
	ApprovedBy       *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`

	// ProcessingStartedAt anchors the reconciliation sweep for checkouts
	// stuck in refund_processing.
	ProcessingStartedAt *time.Time `gorm:"column:processing_started_at"`
	ProcessedAt         *time.Time `gorm:"column:processed_at"`
	FailureReason       *string    `gorm:"column:failure_reason"`
	FailureRetryable    *bool      `gorm:"column:failure_retryable"`

	Deductions []RefundDeduction `gorm:"foreignKey:RefundID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
