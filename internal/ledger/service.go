package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
)

// Breakdown itemizes where a tenant's outstanding balance comes from.
type Breakdown struct {
	OpenInvoices     decimal.Decimal `json:"open_invoices"`
	UnsettledCheques decimal.Decimal `json:"unsettled_cheques"`
	Total            decimal.Decimal `json:"total"`
}

// Service reads the tenant ledger. The outstanding balance it reports is the
// amount the deposit calculator nets against the security deposit.
type Service struct {
	repo Repository
}

// NewService builds the ledger service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &Service{repo: repo}, nil
}

// OutstandingAmount sums the tenant's open invoice balances and unsettled
// post-dated cheques. When tx is non-nil the sums are taken inside that
// transaction so the snapshot is consistent with the caller's writes.
func (s *Service) OutstandingAmount(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (decimal.Decimal, error) {
	breakdown, err := s.outstanding(ctx, s.repo.WithTx(tx), tenantID)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.Total, nil
}

// OutstandingBreakdown returns the itemized balance for display.
func (s *Service) OutstandingBreakdown(ctx context.Context, tenantID uuid.UUID) (*Breakdown, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	return s.outstanding(ctx, s.repo, tenantID)
}

// ListInvoices returns the tenant's full invoice history, oldest due first.
func (s *Service) ListInvoices(ctx context.Context, tenantID uuid.UUID) ([]models.Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	invoices, err := s.repo.ListInvoicesByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return invoices, nil
}

func (s *Service) outstanding(ctx context.Context, repo Repository, tenantID uuid.UUID) (*Breakdown, error) {
	invoices, err := repo.SumOpenInvoiceBalance(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum open invoices")
	}
	cheques, err := repo.SumUnsettledChequeAmount(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum unsettled cheques")
	}
	return &Breakdown{
		OpenInvoices:     invoices,
		UnsettledCheques: cheques,
		Total:            invoices.Add(cheques),
	}, nil
}
