package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// Checkout is the end-to-end record of a tenant's move-out and deposit-refund
// process. At most one checkout per tenant may sit in a non-completed status;
// the ux_checkouts_tenant_active partial unique index enforces that at the
// insert boundary.
type Checkout struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutNumber  int64                `gorm:"column:checkout_number;autoIncrement;uniqueIndex"`
	TenantID        uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null"`
	PropertyID      uuid.UUID            `gorm:"column:property_id;type:uuid;not null"`
	UnitID          uuid.UUID            `gorm:"column:unit_id;type:uuid;not null"`
	Reason          enums.CheckoutReason `gorm:"column:reason;type:checkout_reason;not null"`
	Status          enums.CheckoutStatus `gorm:"column:status;type:checkout_status;not null;default:'pending'"`
	NoticeDate      time.Time            `gorm:"column:notice_date;not null"`
	ExpectedMoveOut time.Time            `gorm:"column:expected_move_out;not null"`

	// HeldFromStatus remembers where an ON_HOLD checkout resumes to.
	HeldFromStatus *enums.CheckoutStatus `gorm:"column:held_from_status;type:checkout_status"`

	// Version backs the compare-and-swap every transition performs.
	Version int `gorm:"column:version;not null;default:0"`

	Notes      *string        `gorm:"column:notes"`
	Inspection *Inspection    `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	Refund     *DepositRefund `gorm:"foreignKey:CheckoutID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
