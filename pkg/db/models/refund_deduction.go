package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
)

// RefundDeduction is one itemized deduction line on a deposit refund.
// Lines are append/remove only while the refund has not been approved.
type RefundDeduction struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RefundID      uuid.UUID               `gorm:"column:refund_id;type:uuid;not null;index"`
	Category      enums.DeductionCategory `gorm:"column:category;type:deduction_category;not null"`
	Amount        decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Justification string                  `gorm:"column:justification;type:text;not null"`
	Position      int                     `gorm:"column:position;not null"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
}
