package pdc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
)

// Repository defines persistence operations for post-dated cheques.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, cheque *models.PDCCheque) (*models.PDCCheque, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PDCCheque, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PDCCheque, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error

	// MarkDueBefore flips received cheques whose due date has passed to due
	// and returns the affected rows.
	MarkDueBefore(ctx context.Context, cutoff time.Time) ([]models.PDCCheque, error)
}
