package checkouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/internal/deposits"
	dbpkg "github.com/karimnasser/propflow-backend/pkg/db"
	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/outbox/payloads"
	"github.com/karimnasser/propflow-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ledgerReader snapshots a tenant's outstanding balance inside the calling transaction.
type ledgerReader interface {
	OutstandingAmount(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (decimal.Decimal, error)
}

// Service defines the checkout workflow operations.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*models.Checkout, error)
	ScheduleInspection(ctx context.Context, input ScheduleInspectionInput) error
	SaveInspection(ctx context.Context, input SaveInspectionInput) error
	SaveDepositCalculation(ctx context.Context, input SaveDepositCalculationInput) (*deposits.Calculation, error)
	ApproveRefund(ctx context.Context, input ApproveRefundInput) error
	ProcessRefund(ctx context.Context, input ProcessRefundInput) error
	Complete(ctx context.Context, input CompleteInput) error
	Hold(ctx context.Context, input HoldInput) error
	Resume(ctx context.Context, input ResumeInput) error
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	ListCheckouts(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	ledger ledgerReader
	gate   *deposits.ApprovalGate
}

// NewService builds the checkout workflow service with its dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, ledger ledgerReader, gate *deposits.ApprovalGate) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkouts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if gate == nil {
		return nil, fmt.Errorf("approval gate required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxSvc,
		ledger: ledger,
		gate:   gate,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*models.Checkout, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.PropertyID == uuid.Nil || input.UnitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property and unit ids required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid checkout reason %q", input.Reason))
	}
	if input.NoticeDate.IsZero() || input.ExpectedMoveOut.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notice date and expected move-out required")
	}
	if input.ExpectedMoveOut.Before(input.NoticeDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expected move-out must not precede notice date")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var created *models.Checkout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// advisory pre-check; the partial unique index is the real guard
		existing, err := repo.FindActiveByTenant(ctx, input.TenantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up active checkout")
		}
		if existing != nil {
			return activeCheckoutConflict(existing.ID)
		}

		checkout := &models.Checkout{
			TenantID:        input.TenantID,
			PropertyID:      input.PropertyID,
			UnitID:          input.UnitID,
			Reason:          input.Reason,
			Status:          enums.CheckoutStatusPending,
			NoticeDate:      input.NoticeDate,
			ExpectedMoveOut: input.ExpectedMoveOut,
			Notes:           input.Notes,
		}
		created, err = repo.Create(ctx, checkout)
		if err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_checkouts_tenant_active") {
				return errActiveCheckoutRace
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCheckoutInitiated,
			AggregateType: enums.AggregateCheckout,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.CheckoutInitiatedEvent{
				CheckoutID:      created.ID,
				TenantID:        created.TenantID,
				PropertyID:      created.PropertyID,
				UnitID:          created.UnitID,
				Reason:          created.Reason,
				ExpectedMoveOut: created.ExpectedMoveOut,
			},
		}); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTenantMovingOut,
			AggregateType: enums.AggregateCheckout,
			AggregateID:   created.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.TenantMovingOutEvent{
				CheckoutID:      created.ID,
				TenantID:        created.TenantID,
				PropertyID:      created.PropertyID,
				UnitID:          created.UnitID,
				ExpectedMoveOut: created.ExpectedMoveOut,
			},
		})
	})
	if errors.Is(err, errActiveCheckoutRace) {
		// the insert lost to a concurrent Initiate; the tx is rolled back,
		// so look the winner up outside it
		existing, lookupErr := s.repo.FindActiveByTenant(ctx, input.TenantID)
		if lookupErr == nil && existing != nil {
			return nil, activeCheckoutConflict(existing.ID)
		}
		return nil, activeCheckoutConflict(uuid.Nil)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ScheduleInspection(ctx context.Context, input ScheduleInspectionInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if input.InspectorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "inspector user id required")
	}
	if input.ScheduledFor.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheduled time required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusInspectionScheduled, "schedule inspection"); err != nil {
			return err
		}

		scheduledFor := input.ScheduledFor
		if _, err := repo.CreateInspection(ctx, &models.Inspection{
			CheckoutID:      checkout.ID,
			InspectorUserID: input.InspectorUserID,
			ScheduledFor:    &scheduledFor,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inspection")
		}

		return s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusInspectionScheduled, nil, input.Actor)
	})
}

func (s *service) SaveInspection(ctx context.Context, input SaveInspectionInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if !input.Result.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid inspection result %q", input.Result))
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusInspectionComplete, "record inspection"); err != nil {
			return err
		}

		inspection, err := repo.FindInspectionByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inspection")
		}
		if inspection == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inspection has not been scheduled")
		}

		now := time.Now().UTC()
		result := input.Result
		if err := repo.UpdateInspection(ctx, inspection.ID, map[string]any{
			"result":       result,
			"checklist":    input.Checklist,
			"photos":       input.Photos,
			"completed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update inspection")
		}

		if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusInspectionComplete, nil, input.Actor); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInspectionRecorded,
			AggregateType: enums.AggregateInspection,
			AggregateID:   inspection.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.InspectionRecordedEvent{
				CheckoutID:      checkout.ID,
				InspectionID:    inspection.ID,
				InspectorUserID: inspection.InspectorUserID,
				Result:          result,
				CompletedAt:     now,
			},
		}); err != nil {
			return err
		}

		// a failed inspection flags remediation but never blocks the refund flow
		if result == enums.InspectionResultFailed {
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInspectionFailed,
				AggregateType: enums.AggregateInspection,
				AggregateID:   inspection.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.InspectionFailedEvent{
					CheckoutID:   checkout.ID,
					InspectionID: inspection.ID,
					PropertyID:   checkout.PropertyID,
					UnitID:       checkout.UnitID,
					FailedItems:  input.Checklist.FailedItems(),
				},
			})
		}
		return nil
	})
}

func (s *service) SaveDepositCalculation(ctx context.Context, input SaveDepositCalculationInput) (*deposits.Calculation, error) {
	if input.CheckoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}

	var calc *deposits.Calculation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusDepositCalculated, "save deposit calculation"); err != nil {
			return err
		}

		outstanding, err := s.ledger.OutstandingAmount(ctx, tx, checkout.TenantID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot outstanding balance")
		}

		calc, err = deposits.Calculate(deposits.CalculationInput{
			DepositAmount:     input.DepositAmount,
			Deductions:        input.Deductions,
			OutstandingAmount: outstanding,
		})
		if err != nil {
			return err
		}

		refund, err := repo.FindRefundByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}

		requiresApproval := s.gate.RequiresApproval(calc.RefundableAmount)
		refundStatus, targetStatus := resolveCalculationOutcome(calc, requiresApproval)

		refundValues := map[string]any{
			"deposit_amount":     calc.DepositAmount,
			"outstanding_amount": calc.OutstandingAmount,
			"refundable_amount":  calc.RefundableAmount,
			"tenant_owes":        calc.TenantOwes,
			"amount_owed":        calc.AmountOwed,
			"status":             refundStatus,
			"approval_required":  requiresApproval,
			"approved_by":        nil,
			"approved_at":        nil,
		}

		if refund == nil {
			refund, err = repo.CreateRefund(ctx, &models.DepositRefund{
				CheckoutID:        checkout.ID,
				DepositAmount:     calc.DepositAmount,
				OutstandingAmount: calc.OutstandingAmount,
				RefundableAmount:  calc.RefundableAmount,
				TenantOwes:        calc.TenantOwes,
				AmountOwed:        calc.AmountOwed,
				Status:            refundStatus,
				ApprovalRequired:  requiresApproval,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
			}
		} else {
			if err := repo.UpdateRefund(ctx, refund.ID, refundValues); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund")
			}
		}

		rows := make([]models.RefundDeduction, 0, len(input.Deductions))
		for i, d := range input.Deductions {
			rows = append(rows, models.RefundDeduction{
				RefundID:      refund.ID,
				Category:      d.Category,
				Amount:        d.Amount,
				Justification: d.Justification,
				Position:      i,
			})
		}
		if err := repo.ReplaceDeductions(ctx, refund.ID, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace deductions")
		}

		if err := s.transition(ctx, tx, repo, checkout, targetStatus, nil, input.Actor); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDepositCalculated,
			AggregateType: enums.AggregateDepositRefund,
			AggregateID:   refund.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.DepositCalculatedEvent{
				CheckoutID:        checkout.ID,
				RefundID:          refund.ID,
				DepositAmount:     calc.DepositAmount,
				TotalDeductions:   calc.TotalDeductions,
				OutstandingAmount: calc.OutstandingAmount,
				RefundableAmount:  calc.RefundableAmount,
				TenantOwes:        calc.TenantOwes,
				ApprovalRequired:  requiresApproval,
			},
		}); err != nil {
			return err
		}

		if calc.TenantOwes {
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventSettlementDue,
				AggregateType: enums.AggregateDepositRefund,
				AggregateID:   refund.ID,
				Version:       1,
				Actor:         buildActor(input.Actor),
				Data: payloads.SettlementDueEvent{
					CheckoutID: checkout.ID,
					RefundID:   refund.ID,
					TenantID:   checkout.TenantID,
					AmountOwed: calc.AmountOwed,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return calc, nil
}

func (s *service) ApproveRefund(ctx context.Context, input ApproveRefundInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Actor.Role.CanApproveRefunds() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "refund approval requires a manager")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusApproved, "approve refund"); err != nil {
			return err
		}

		refund, err := repo.FindRefundByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund == nil || refund.Status != enums.RefundStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund is not awaiting approval")
		}

		now := time.Now().UTC()
		if err := repo.UpdateRefund(ctx, refund.ID, map[string]any{
			"status":      enums.RefundStatusApproved,
			"approved_by": input.Actor.UserID,
			"approved_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve refund")
		}

		if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusApproved, nil, input.Actor); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRefundApproved,
			AggregateType: enums.AggregateDepositRefund,
			AggregateID:   refund.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.RefundApprovedEvent{
				CheckoutID:       checkout.ID,
				RefundID:         refund.ID,
				RefundableAmount: refund.RefundableAmount,
				ApprovedBy:       input.Actor.UserID,
				ApprovedAt:       now,
			},
		})
	})
}

func (s *service) ProcessRefund(ctx context.Context, input ProcessRefundInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if !input.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid refund method %q", input.Method))
	}
	if input.Method == enums.RefundMethodBankTransfer && (input.BankAccountRef == nil || *input.BankAccountRef == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "bank account reference required for bank transfers")
	}
	if input.Method == enums.RefundMethodCheque && (input.ChequeNumber == nil || *input.ChequeNumber == "") {
		return pkgerrors.New(pkgerrors.CodeValidation, "cheque number required for cheque refunds")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusRefundProcessing, "process refund"); err != nil {
			return err
		}

		refund, err := repo.FindRefundByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		// failed refunds may be re-submitted with corrected disbursement details
		if refund == nil || (refund.Status != enums.RefundStatusApproved && refund.Status != enums.RefundStatusFailed) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund is not approved for disbursement")
		}

		now := time.Now().UTC()
		method := input.Method
		if err := repo.UpdateRefund(ctx, refund.ID, map[string]any{
			"status":                enums.RefundStatusProcessing,
			"method":                method,
			"bank_account_ref":      input.BankAccountRef,
			"cheque_number":         input.ChequeNumber,
			"processing_started_at": now,
			"failure_reason":        nil,
			"failure_retryable":     nil,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start refund processing")
		}

		if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusRefundProcessing, nil, input.Actor); err != nil {
			return err
		}

		event := payloads.DisbursementRequestedEvent{
			CheckoutID: checkout.ID,
			RefundID:   refund.ID,
			TenantID:   checkout.TenantID,
			Amount:     refund.RefundableAmount,
			Method:     method,
		}
		if input.BankAccountRef != nil {
			event.BankAccountRef = *input.BankAccountRef
		}
		if input.ChequeNumber != nil {
			event.ChequeNumber = *input.ChequeNumber
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDisbursementRequested,
			AggregateType: enums.AggregateDepositRefund,
			AggregateID:   refund.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data:          event,
		})
	})
}

func (s *service) Complete(ctx context.Context, input CompleteInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if err := validateTransition(checkout.Status, enums.CheckoutStatusCompleted, "complete checkout"); err != nil {
			return err
		}

		refund, err := repo.FindRefundByCheckout(ctx, checkout.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund")
		}
		if refund == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout has no deposit calculation")
		}

		// the short path past disbursement exists only when the tenant owes money
		if checkout.Status == enums.CheckoutStatusDepositCalculated && refund.Status != enums.RefundStatusSettlementDue {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only settlement-due checkouts may complete without disbursement")
		}

		if err := s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusCompleted, nil, input.Actor); err != nil {
			return err
		}

		refunded := refund.RefundableAmount
		if refund.TenantOwes {
			refunded = decimal.Zero
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCheckoutCompleted,
			AggregateType: enums.AggregateCheckout,
			AggregateID:   checkout.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: payloads.CheckoutCompletedEvent{
				CheckoutID:     checkout.ID,
				TenantID:       checkout.TenantID,
				PropertyID:     checkout.PropertyID,
				UnitID:         checkout.UnitID,
				RefundedAmount: refunded,
				TenantOwes:     refund.TenantOwes,
				CompletedAt:    time.Now().UTC(),
			},
		})
	})
}

func (s *service) Hold(ctx context.Context, input HoldInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	if input.Reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "hold reason required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if !CanHold(checkout.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("checkout cannot be held while %s", checkout.Status)).
				WithDetails(map[string]any{"current_status": checkout.Status})
		}

		heldFrom := checkout.Status
		return s.transition(ctx, tx, repo, checkout, enums.CheckoutStatusOnHold, map[string]any{
			"held_from_status": heldFrom,
			"notes":            appendNote(checkout.Notes, "hold: "+input.Reason),
		}, input.Actor)
	})
}

func (s *service) Resume(ctx context.Context, input ResumeInput) error {
	if input.CheckoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checkout, err := s.lockCheckout(ctx, repo, input.CheckoutID)
		if err != nil {
			return err
		}
		if checkout.Status != enums.CheckoutStatusOnHold || checkout.HeldFromStatus == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not on hold").
				WithDetails(map[string]any{"current_status": checkout.Status})
		}

		target := *checkout.HeldFromStatus
		return s.transition(ctx, tx, repo, checkout, target, map[string]any{
			"held_from_status": nil,
		}, input.Actor)
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout id required")
	}
	checkout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	return &Detail{
		Checkout:   *checkout,
		Inspection: checkout.Inspection,
		Refund:     checkout.Refund,
	}, nil
}

func (s *service) ListCheckouts(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list checkouts")
	}
	return list, nil
}

// lockCheckout loads the row under FOR UPDATE so transitions serialize per checkout.
func (s *service) lockCheckout(ctx context.Context, repo Repository, id uuid.UUID) (*models.Checkout, error) {
	checkout, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout")
	}
	return checkout, nil
}

// transition CASes the status change, mutates the in-memory row, and emits
// the status-changed event. A version miss surfaces as a retryable conflict.
func (s *service) transition(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout, target enums.CheckoutStatus, extra map[string]any, actor Actor) error {
	updates := map[string]any{"status": target}
	for k, v := range extra {
		updates[k] = v
	}

	matched, err := repo.UpdateCAS(ctx, checkout.ID, checkout.Version, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update checkout status")
	}
	if !matched {
		return pkgerrors.New(pkgerrors.CodeConcurrency, "checkout was modified concurrently").
			WithDetails(map[string]any{"checkout_id": checkout.ID})
	}

	from := checkout.Status
	checkout.Status = target
	checkout.Version++

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCheckoutStatusChanged,
		AggregateType: enums.AggregateCheckout,
		AggregateID:   checkout.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: payloads.CheckoutStatusChangedEvent{
			CheckoutID: checkout.ID,
			TenantID:   checkout.TenantID,
			PropertyID: checkout.PropertyID,
			FromStatus: from,
			ToStatus:   target,
			ChangedAt:  time.Now().UTC(),
		},
	})
}

// resolveCalculationOutcome maps a calculation to the refund status and the
// checkout status it lands in.
func resolveCalculationOutcome(calc *deposits.Calculation, requiresApproval bool) (enums.RefundStatus, enums.CheckoutStatus) {
	switch {
	case calc.TenantOwes:
		return enums.RefundStatusSettlementDue, enums.CheckoutStatusDepositCalculated
	case requiresApproval:
		return enums.RefundStatusPendingApproval, enums.CheckoutStatusPendingApproval
	default:
		return enums.RefundStatusApproved, enums.CheckoutStatusApproved
	}
}

// errActiveCheckoutRace marks an insert that lost to a concurrent Initiate
// on the partial unique index.
var errActiveCheckoutRace = errors.New("active checkout race")

func activeCheckoutConflict(existingID uuid.UUID) error {
	err := pkgerrors.New(pkgerrors.CodeConflict, "tenant already has an active checkout")
	if existingID != uuid.Nil {
		return err.WithDetails(map[string]any{"existing_checkout_id": existingID})
	}
	return err
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   string(actor.Role),
	}
}

func appendNote(existing *string, note string) string {
	if existing == nil || *existing == "" {
		return note
	}
	return *existing + "\n" + note
}
