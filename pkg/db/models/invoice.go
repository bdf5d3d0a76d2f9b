package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// Invoice is a tenant ledger charge. Open balances feed the outstanding
// amount snapshot used by the deposit calculator.
type Invoice struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index"`
	PropertyID uuid.UUID           `gorm:"column:property_id;type:uuid;not null"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	AmountPaid decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	Status     enums.InvoiceStatus `gorm:"column:status;type:invoice_status;not null;default:'open'"`
	DueDate    time.Time           `gorm:"column:due_date;not null"`
	Reference  *string             `gorm:"column:reference"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
