package pdc

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds the cheque repository over the given connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, cheque *models.PDCCheque) (*models.PDCCheque, error) {
	if err := r.db.WithContext(ctx).Create(cheque).Error; err != nil {
		return nil, err
	}
	return cheque, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PDCCheque, error) {
	var cheque models.PDCCheque
	err := r.db.WithContext(ctx).First(&cheque, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cheque, nil
}

func (r *repository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PDCCheque, error) {
	var cheques []models.PDCCheque
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("due_date ASC").
		Find(&cheques).Error
	if err != nil {
		return nil, err
	}
	return cheques, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PDCCheque{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) MarkDueBefore(ctx context.Context, cutoff time.Time) ([]models.PDCCheque, error) {
	var flipped []models.PDCCheque
	err := r.db.WithContext(ctx).
		Model(&flipped).
		Clauses(clause.Returning{}).
		Where("status = ? AND due_date <= ?", enums.PDCStatusReceived, cutoff).
		Update("status", enums.PDCStatusDue).Error
	if err != nil {
		return nil, err
	}
	return flipped, nil
}
