package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
)

// Repository defines persistence operations for the tenant ledger tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	FindInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoicesByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Invoice, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, updates map[string]any) error

	// SumOpenInvoiceBalance returns the unpaid remainder across the tenant's
	// open invoices.
	SumOpenInvoiceBalance(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)

	// SumUnsettledChequeAmount returns the total of post-dated cheques that
	// have not cleared. Bounced cheques still count; the money never arrived.
	SumUnsettledChequeAmount(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
}
