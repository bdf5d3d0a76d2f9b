package checkouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/pagination"
)

// Repository defines persistence operations for the checkout workflow tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)

	// UpdateCAS applies updates guarded by the version column. It reports
	// whether the row matched; a miss means another writer got there first.
	UpdateCAS(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error)

	CreateInspection(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error)
	UpdateInspection(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindInspectionByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.Inspection, error)

	// ListStaleProcessingRefunds returns refunds that entered processing
	// before the cutoff and never heard back from the rail.
	ListStaleProcessingRefunds(ctx context.Context, cutoff time.Time) ([]models.DepositRefund, error)

	CreateRefund(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error)
	UpdateRefund(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindRefundByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.DepositRefund, error)
	ReplaceDeductions(ctx context.Context, refundID uuid.UUID, deductions []models.RefundDeduction) error
}
