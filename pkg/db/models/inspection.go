package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/types"
)

// Inspection is the move-out condition report attached 1:1 to a checkout.
// Immutable once the checkout advances past inspection_complete, except by
// explicit admin re-open outside the normal flow.
type Inspection struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutID      uuid.UUID `gorm:"column:checkout_id;type:uuid;not null;uniqueIndex"`
	InspectorUserID uuid.UUID `gorm:"column:inspector_user_id;type:uuid;not null"`
	// Result stays NULL until the inspector files the outcome.
	Result       *enums.InspectionResult `gorm:"column:result;type:inspection_result"`
	Checklist    types.Checklist         `gorm:"column:checklist;type:jsonb;serializer:json"`
	Photos       types.PhotoRefs         `gorm:"column:photos;type:jsonb;serializer:json"`
	ScheduledFor *time.Time              `gorm:"column:scheduled_for"`
	CompletedAt  *time.Time              `gorm:"column:completed_at"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
