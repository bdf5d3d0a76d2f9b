package pdc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// chequeTransitions is the cheque lifecycle edge list.
var chequeTransitions = map[enums.PDCStatus][]enums.PDCStatus{
	enums.PDCStatusReceived:  {enums.PDCStatusDue},
	enums.PDCStatusDue:       {enums.PDCStatusDeposited},
	enums.PDCStatusDeposited: {enums.PDCStatusCleared, enums.PDCStatusBounced},
	enums.PDCStatusCleared:   {},
	enums.PDCStatusBounced:   {},
}

func canTransition(from, to enums.PDCStatus) bool {
	for _, allowed := range chequeTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RegisterInput records a cheque handed over at lease signing.
type RegisterInput struct {
	TenantID     uuid.UUID
	PropertyID   uuid.UUID
	ChequeNumber string
	BankName     string
	Amount       decimal.Decimal
	DueDate      time.Time
}

// Service manages the post-dated cheque lifecycle.
type Service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the cheque service.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pdc repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &Service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

// Register stores a newly received cheque.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.PDCCheque, error) {
	if input.TenantID == uuid.Nil || input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and property ids required")
	}
	if strings.TrimSpace(input.ChequeNumber) == "" || strings.TrimSpace(input.BankName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cheque number and bank name required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cheque amount must be positive")
	}
	if input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date required")
	}

	cheque, err := s.repo.Create(ctx, &models.PDCCheque{
		TenantID:     input.TenantID,
		PropertyID:   input.PropertyID,
		ChequeNumber: strings.TrimSpace(input.ChequeNumber),
		BankName:     strings.TrimSpace(input.BankName),
		Amount:       input.Amount,
		DueDate:      input.DueDate,
		Status:       enums.PDCStatusReceived,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cheque")
	}
	return cheque, nil
}

// Deposit marks a due cheque as presented to the bank.
func (s *Service) Deposit(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return s.advance(ctx, id, enums.PDCStatusDeposited, map[string]any{"deposited_at": now})
}

// Clear records a successful settlement.
func (s *Service) Clear(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return s.advance(ctx, id, enums.PDCStatusCleared, map[string]any{"settled_at": now})
}

// Bounce records a dishonored cheque. The amount stays in the tenant's
// outstanding balance.
func (s *Service) Bounce(ctx context.Context, id uuid.UUID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "bounce reason required")
	}
	now := time.Now().UTC()
	return s.advance(ctx, id, enums.PDCStatusBounced, map[string]any{
		"settled_at":    now,
		"bounce_reason": strings.TrimSpace(reason),
	})
}

// ListByTenant returns the tenant's cheques ordered by due date.
func (s *Service) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.PDCCheque, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	cheques, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cheques")
	}
	return cheques, nil
}

// SweepDue flips received cheques past their due date and emits a status
// event per cheque. Called by the cron worker.
func (s *Service) SweepDue(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		flipped, err := repo.MarkDueBefore(ctx, cutoff)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cheques due")
		}
		count = len(flipped)
		for _, cheque := range flipped {
			if err := s.emitStatusChange(ctx, tx, &cheque, enums.PDCStatusReceived, enums.PDCStatusDue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) advance(ctx context.Context, id uuid.UUID, target enums.PDCStatus, updates map[string]any) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cheque id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cheque, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cheque")
		}
		if cheque == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cheque not found")
		}
		if !canTransition(cheque.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cheque cannot move from %s to %s", cheque.Status, target)).
				WithDetails(map[string]any{
					"current_status": cheque.Status,
					"target_status":  target,
				})
		}

		values := map[string]any{"status": target}
		for k, v := range updates {
			values[k] = v
		}
		if err := repo.Update(ctx, cheque.ID, values); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cheque")
		}

		return s.emitStatusChange(ctx, tx, cheque, cheque.Status, target)
	})
}

func (s *Service) emitStatusChange(ctx context.Context, tx *gorm.DB, cheque *models.PDCCheque, from, to enums.PDCStatus) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPDCStatusChanged,
		AggregateType: enums.AggregatePDCCheque,
		AggregateID:   cheque.ID,
		Version:       1,
		Data: payloads.PDCStatusChangedEvent{
			ChequeID:   cheque.ID,
			TenantID:   cheque.TenantID,
			FromStatus: from,
			ToStatus:   to,
			Amount:     cheque.Amount,
			DueDate:    cheque.DueDate,
		},
	})
}
