package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// PDCCheque is a post-dated cheque held against a tenant's lease. Cheques
// that have not cleared count toward the tenant's outstanding balance.
type PDCCheque struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null;index"`
	PropertyID   uuid.UUID       `gorm:"column:property_id;type:uuid;not null"`
	ChequeNumber string          `gorm:"column:cheque_number;type:text;not null"`
	BankName     string          `gorm:"column:bank_name;type:text;not null"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	DueDate      time.Time       `gorm:"column:due_date;not null"`
	Status       enums.PDCStatus `gorm:"column:status;type:pdc_status;not null;default:'received'"`
	DepositedAt  *time.Time      `gorm:"column:deposited_at"`
	SettledAt    *time.Time      `gorm:"column:settled_at"`
	BounceReason *string         `gorm:"column:bounce_reason"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
