package checkouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	"github.com/karimnasser/propflow-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a checkouts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
	if err := r.db.WithContext(ctx).Create(checkout).Error; err != nil {
		return nil, err
	}
	return checkout, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Preload("Inspection").
		Preload("Refund.Deductions").
		Where("id = ?", id).
		First(&checkout).Error
	if err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	q := r.db.WithContext(ctx)
	// sqlite (tests) has no FOR UPDATE
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var checkout models.Checkout
	if err := q.Where("id = ?", id).First(&checkout).Error; err != nil {
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error) {
	var checkout models.Checkout
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status <> ?", tenantID, enums.CheckoutStatusCompleted).
		First(&checkout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &checkout, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	q := r.db.WithContext(ctx).Model(&models.Checkout{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.TenantID != nil {
		q = q.Where("tenant_id = ?", *filters.TenantID)
	}
	if filters.PropertyID != nil {
		q = q.Where("property_id = ?", *filters.PropertyID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Checkout
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	list := &List{}
	pageSize := pagination.NormalizeLimit(params.Limit)
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for _, row := range rows {
		list.Checkouts = append(list.Checkouts, Summary{
			ID:              row.ID,
			CheckoutNumber:  row.CheckoutNumber,
			TenantID:        row.TenantID,
			PropertyID:      row.PropertyID,
			UnitID:          row.UnitID,
			Status:          row.Status,
			Reason:          row.Reason,
			ExpectedMoveOut: row.ExpectedMoveOut,
			CreatedAt:       row.CreatedAt,
		})
	}
	if hasMore {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) UpdateCAS(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
	merged := map[string]any{"version": gorm.Expr("version + 1")}
	for k, v := range updates {
		merged[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Checkout{}).
		Where("id = ? AND version = ?", id, fromVersion).
		Updates(merged)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreateInspection(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error) {
	if err := r.db.WithContext(ctx).Create(inspection).Error; err != nil {
		return nil, err
	}
	return inspection, nil
}

func (r *repository) UpdateInspection(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindInspectionByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.Inspection, error) {
	var inspection models.Inspection
	err := r.db.WithContext(ctx).
		Where("checkout_id = ?", checkoutID).
		First(&inspection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inspection, nil
}

func (r *repository) CreateRefund(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error) {
	if err := r.db.WithContext(ctx).Create(refund).Error; err != nil {
		return nil, err
	}
	return refund, nil
}

func (r *repository) UpdateRefund(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.DepositRefund{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindRefundByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.DepositRefund, error) {
	var refund models.DepositRefund
	err := r.db.WithContext(ctx).
		Preload("Deductions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("checkout_id = ?", checkoutID).
		First(&refund).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func (r *repository) ListStaleProcessingRefunds(ctx context.Context, cutoff time.Time) ([]models.DepositRefund, error) {
	var refunds []models.DepositRefund
	err := r.db.WithContext(ctx).
		Where("status = ? AND processing_started_at IS NOT NULL AND processing_started_at < ?",
			enums.RefundStatusProcessing, cutoff).
		Order("processing_started_at ASC").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *repository) ReplaceDeductions(ctx context.Context, refundID uuid.UUID, deductions []models.RefundDeduction) error {
	if err := r.db.WithContext(ctx).
		Where("refund_id = ?", refundID).
		Delete(&models.RefundDeduction{}).Error; err != nil {
		return err
	}
	if len(deductions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&deductions).Error
}
