package checkouts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/karimnasser/propflow-backend/internal/deposits"
	"github.com/karimnasser/propflow-backend/pkg/db/models"
	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
	"github.com/karimnasser/propflow-backend/pkg/outbox"
	"github.com/karimnasser/propflow-backend/pkg/pagination"
)

type stubRepo struct {
	createFn                   func(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error)
	findByIDFn                 func(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	findByIDForUpdateFn        func(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	findActiveByTenantFn       func(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error)
	listFn                     func(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error)
	updateCASFn                func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error)
	createInspectionFn         func(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error)
	updateInspectionFn         func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	findInspectionByCheckoutFn func(ctx context.Context, checkoutID uuid.UUID) (*models.Inspection, error)
	createRefundFn             func(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error)
	updateRefundFn             func(ctx context.Context, id uuid.UUID, updates map[string]any) error
	findRefundByCheckoutFn     func(ctx context.Context, checkoutID uuid.UUID) (*models.DepositRefund, error)
	replaceDeductionsFn        func(ctx context.Context, refundID uuid.UUID, deductions []models.RefundDeduction) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
	if s.createFn == nil {
		panic("not implemented")
	}
	return s.createFn(ctx, checkout)
}

func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	if s.findByIDFn == nil {
		panic("not implemented")
	}
	return s.findByIDFn(ctx, id)
}

func (s *stubRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	if s.findByIDForUpdateFn == nil {
		panic("not implemented")
	}
	return s.findByIDForUpdateFn(ctx, id)
}

func (s *stubRepo) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error) {
	if s.findActiveByTenantFn == nil {
		panic("not implemented")
	}
	return s.findActiveByTenantFn(ctx, tenantID)
}

func (s *stubRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*List, error) {
	if s.listFn == nil {
		panic("not implemented")
	}
	return s.listFn(ctx, params, filters)
}

func (s *stubRepo) UpdateCAS(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
	if s.updateCASFn == nil {
		panic("not implemented")
	}
	return s.updateCASFn(ctx, id, fromVersion, updates)
}

func (s *stubRepo) CreateInspection(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error) {
	if s.createInspectionFn == nil {
		panic("not implemented")
	}
	return s.createInspectionFn(ctx, inspection)
}

func (s *stubRepo) UpdateInspection(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updateInspectionFn == nil {
		panic("not implemented")
	}
	return s.updateInspectionFn(ctx, id, updates)
}

func (s *stubRepo) FindInspectionByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.Inspection, error) {
	if s.findInspectionByCheckoutFn == nil {
		panic("not implemented")
	}
	return s.findInspectionByCheckoutFn(ctx, checkoutID)
}

func (s *stubRepo) CreateRefund(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error) {
	if s.createRefundFn == nil {
		panic("not implemented")
	}
	return s.createRefundFn(ctx, refund)
}

func (s *stubRepo) UpdateRefund(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if s.updateRefundFn == nil {
		panic("not implemented")
	}
	return s.updateRefundFn(ctx, id, updates)
}

func (s *stubRepo) FindRefundByCheckout(ctx context.Context, checkoutID uuid.UUID) (*models.DepositRefund, error) {
	if s.findRefundByCheckoutFn == nil {
		panic("not implemented")
	}
	return s.findRefundByCheckoutFn(ctx, checkoutID)
}

func (s *stubRepo) ReplaceDeductions(ctx context.Context, refundID uuid.UUID, deductions []models.RefundDeduction) error {
	if s.replaceDeductionsFn == nil {
		panic("not implemented")
	}
	return s.replaceDeductionsFn(ctx, refundID, deductions)
}

func (s *stubRepo) ListStaleProcessingRefunds(ctx context.Context, cutoff time.Time) ([]models.DepositRefund, error) {
	panic("not implemented")
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) eventTypes() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

type stubLedger struct {
	outstanding decimal.Decimal
}

func (s stubLedger) OutstandingAmount(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (decimal.Decimal, error) {
	return s.outstanding, nil
}

func newTestService(t *testing.T, repo *stubRepo, out *stubOutbox, ledger stubLedger) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, out, ledger, deposits.NewApprovalGate(decimal.NewFromInt(3000)))
	require.NoError(t, err)
	return svc
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

func manager() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleManager}
}

func operator() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleOperator}
}

func validInitiateInput() InitiateInput {
	notice := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return InitiateInput{
		TenantID:        uuid.New(),
		PropertyID:      uuid.New(),
		UnitID:          uuid.New(),
		Reason:          enums.CheckoutReasonLeaseEnd,
		NoticeDate:      notice,
		ExpectedMoveOut: notice.AddDate(0, 1, 0),
		Actor:           operator(),
	}
}

func TestInitiateCreatesCheckoutAndEmits(t *testing.T) {
	out := &stubOutbox{}
	repo := &stubRepo{
		findActiveByTenantFn: func(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
			checkout.ID = uuid.New()
			return checkout, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	created, err := svc.Initiate(context.Background(), validInitiateInput())
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, enums.CheckoutStatusPending, created.Status)
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutInitiated,
		enums.EventTenantMovingOut,
	}, out.eventTypes())
}

func TestInitiateRejectsSecondActiveCheckout(t *testing.T) {
	existingID := uuid.New()
	repo := &stubRepo{
		findActiveByTenantFn: func(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: existingID, Status: enums.CheckoutStatusRefundProcessing}, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	_, err := svc.Initiate(context.Background(), validInitiateInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, codeOf(err))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, existingID, details["existing_checkout_id"])
}

func TestInitiateUniqueRaceReportsWinner(t *testing.T) {
	winnerID := uuid.New()
	var activeCalls int
	repo := &stubRepo{
		findActiveByTenantFn: func(ctx context.Context, tenantID uuid.UUID) (*models.Checkout, error) {
			activeCalls++
			if activeCalls == 1 {
				// pre-check runs before the rival insert commits
				return nil, nil
			}
			return &models.Checkout{ID: winnerID, Status: enums.CheckoutStatusPending}, nil
		},
		createFn: func(ctx context.Context, checkout *models.Checkout) (*models.Checkout, error) {
			return nil, &pgconn.PgError{Code: "23505", ConstraintName: "ux_checkouts_tenant_active"}
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	_, err := svc.Initiate(context.Background(), validInitiateInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, codeOf(err))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, winnerID, details["existing_checkout_id"])
}

func TestInitiateRejectsMoveOutBeforeNotice(t *testing.T) {
	input := validInitiateInput()
	input.ExpectedMoveOut = input.NoticeDate.AddDate(0, 0, -1)
	svc := newTestService(t, &stubRepo{}, &stubOutbox{}, stubLedger{})

	_, err := svc.Initiate(context.Background(), input)
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestSaveInspectionFailedResultFlagsRemediation(t *testing.T) {
	checkoutID := uuid.New()
	out := &stubOutbox{}
	var savedUpdates map[string]any
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: checkoutID, Status: enums.CheckoutStatusInspectionScheduled, Version: 2}, nil
		},
		findInspectionByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
			return &models.Inspection{ID: uuid.New(), CheckoutID: checkoutID, InspectorUserID: uuid.New()}, nil
		},
		updateInspectionFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
			savedUpdates = updates
			return nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			assert.Equal(t, 2, fromVersion)
			return true, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	err := svc.SaveInspection(context.Background(), SaveInspectionInput{
		CheckoutID: checkoutID,
		Result:     enums.InspectionResultFailed,
		Actor:      operator(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.InspectionResultFailed, savedUpdates["result"])
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventInspectionRecorded,
		enums.EventInspectionFailed,
	}, out.eventTypes())
}

func TestSaveInspectionRequiresScheduledInspection(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusInspectionScheduled}, nil
		},
		findInspectionByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.SaveInspection(context.Background(), SaveInspectionInput{
		CheckoutID: uuid.New(),
		Result:     enums.InspectionResultPassed,
		Actor:      operator(),
	})
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))
}

func TestSaveInspectionRejectsWrongStatus(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusPending}, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.SaveInspection(context.Background(), SaveInspectionInput{
		CheckoutID: uuid.New(),
		Result:     enums.InspectionResultPassed,
		Actor:      operator(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "record inspection", details["operation"])
}

func calculationFixture(status enums.CheckoutStatus) (*stubRepo, *map[string]any, *[]models.RefundDeduction) {
	refundUpdates := &map[string]any{}
	deductions := &[]models.RefundDeduction{}
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, TenantID: uuid.New(), Status: status, Version: 1}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return nil, nil
		},
		createRefundFn: func(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error) {
			refund.ID = uuid.New()
			return refund, nil
		},
		replaceDeductionsFn: func(ctx context.Context, refundID uuid.UUID, rows []models.RefundDeduction) error {
			*deductions = rows
			return nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			*refundUpdates = updates
			return true, nil
		},
	}
	return repo, refundUpdates, deductions
}

func TestSaveDepositCalculationAutoApprovesBelowThreshold(t *testing.T) {
	out := &stubOutbox{}
	repo, casUpdates, deductions := calculationFixture(enums.CheckoutStatusInspectionComplete)
	var createdRefund *models.DepositRefund
	inner := repo.createRefundFn
	repo.createRefundFn = func(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error) {
		createdRefund = refund
		return inner(ctx, refund)
	}
	svc := newTestService(t, repo, out, stubLedger{outstanding: decimal.NewFromInt(200)})

	calc, err := svc.SaveDepositCalculation(context.Background(), SaveDepositCalculationInput{
		CheckoutID:    uuid.New(),
		DepositAmount: decimal.NewFromInt(3000),
		Deductions: []deposits.DeductionInput{
			{Category: enums.DeductionCategoryCleaning, Amount: decimal.NewFromInt(300), Justification: "full clean"},
		},
		Actor: operator(),
	})
	require.NoError(t, err)
	assert.True(t, calc.RefundableAmount.Equal(decimal.NewFromInt(2500)))
	assert.False(t, calc.TenantOwes)

	require.NotNil(t, createdRefund)
	assert.Equal(t, enums.RefundStatusApproved, createdRefund.Status)
	assert.False(t, createdRefund.ApprovalRequired)
	assert.Equal(t, enums.CheckoutStatusApproved, (*casUpdates)["status"])
	assert.Len(t, *deductions, 1)
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventDepositCalculated,
	}, out.eventTypes())
}

func TestSaveDepositCalculationLargeRefundNeedsApproval(t *testing.T) {
	out := &stubOutbox{}
	repo, casUpdates, _ := calculationFixture(enums.CheckoutStatusInspectionComplete)
	svc := newTestService(t, repo, out, stubLedger{outstanding: decimal.Zero})

	calc, err := svc.SaveDepositCalculation(context.Background(), SaveDepositCalculationInput{
		CheckoutID:    uuid.New(),
		DepositAmount: decimal.NewFromInt(5000),
		Actor:         operator(),
	})
	require.NoError(t, err)
	assert.True(t, calc.RefundableAmount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, enums.CheckoutStatusPendingApproval, (*casUpdates)["status"])
}

func TestSaveDepositCalculationShortfallBecomesSettlementDue(t *testing.T) {
	out := &stubOutbox{}
	repo, casUpdates, _ := calculationFixture(enums.CheckoutStatusInspectionComplete)
	var createdRefund *models.DepositRefund
	inner := repo.createRefundFn
	repo.createRefundFn = func(ctx context.Context, refund *models.DepositRefund) (*models.DepositRefund, error) {
		createdRefund = refund
		return inner(ctx, refund)
	}
	svc := newTestService(t, repo, out, stubLedger{outstanding: decimal.NewFromInt(1500)})

	calc, err := svc.SaveDepositCalculation(context.Background(), SaveDepositCalculationInput{
		CheckoutID:    uuid.New(),
		DepositAmount: decimal.NewFromInt(1000),
		Actor:         operator(),
	})
	require.NoError(t, err)
	assert.True(t, calc.TenantOwes)
	assert.True(t, calc.AmountOwed.Equal(decimal.NewFromInt(500)))
	assert.True(t, calc.RefundableAmount.IsZero())

	require.NotNil(t, createdRefund)
	assert.Equal(t, enums.RefundStatusSettlementDue, createdRefund.Status)
	assert.Equal(t, enums.CheckoutStatusDepositCalculated, (*casUpdates)["status"])
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventDepositCalculated,
		enums.EventSettlementDue,
	}, out.eventTypes())
}

func TestSaveDepositCalculationRecalcReplacesRefund(t *testing.T) {
	refundID := uuid.New()
	var refundUpdates map[string]any
	repo, _, _ := calculationFixture(enums.CheckoutStatusPendingApproval)
	repo.findRefundByCheckoutFn = func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
		return &models.DepositRefund{ID: refundID, Status: enums.RefundStatusPendingApproval}, nil
	}
	repo.updateRefundFn = func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
		assert.Equal(t, refundID, id)
		refundUpdates = updates
		return nil
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{outstanding: decimal.Zero})

	_, err := svc.SaveDepositCalculation(context.Background(), SaveDepositCalculationInput{
		CheckoutID:    uuid.New(),
		DepositAmount: decimal.NewFromInt(1200),
		Actor:         operator(),
	})
	require.NoError(t, err)
	// recalc resets any earlier approval state
	assert.Equal(t, enums.RefundStatusApproved, refundUpdates["status"])
	assert.Nil(t, refundUpdates["approved_by"])
}

func TestSaveDepositCalculationAfterApprovalRevokesApproval(t *testing.T) {
	refundID := uuid.New()
	approver := uuid.New()
	approvedAt := time.Now().UTC()
	var refundUpdates map[string]any
	repo, casUpdates, _ := calculationFixture(enums.CheckoutStatusApproved)
	repo.findRefundByCheckoutFn = func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
		return &models.DepositRefund{
			ID:         refundID,
			Status:     enums.RefundStatusApproved,
			ApprovedBy: &approver,
			ApprovedAt: &approvedAt,
		}, nil
	}
	repo.updateRefundFn = func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
		refundUpdates = updates
		return nil
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{outstanding: decimal.Zero})

	calc, err := svc.SaveDepositCalculation(context.Background(), SaveDepositCalculationInput{
		CheckoutID:    uuid.New(),
		DepositAmount: decimal.NewFromInt(5000),
		Actor:         operator(),
	})
	require.NoError(t, err)
	assert.True(t, calc.RefundableAmount.Equal(decimal.NewFromInt(5000)))
	// still above the threshold, so the earlier approval no longer stands
	assert.Equal(t, enums.CheckoutStatusPendingApproval, (*casUpdates)["status"])
	assert.Equal(t, enums.RefundStatusPendingApproval, refundUpdates["status"])
	assert.Nil(t, refundUpdates["approved_by"])
	assert.Nil(t, refundUpdates["approved_at"])
}

func TestApproveRefundRequiresManagerRole(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubOutbox{}, stubLedger{})

	err := svc.ApproveRefund(context.Background(), ApproveRefundInput{
		CheckoutID: uuid.New(),
		Actor:      operator(),
	})
	assert.Equal(t, pkgerrors.CodeForbidden, codeOf(err))
}

func TestApproveRefundRecordsApprover(t *testing.T) {
	checkoutID := uuid.New()
	refundID := uuid.New()
	actor := manager()
	out := &stubOutbox{}
	var refundUpdates map[string]any
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: checkoutID, Status: enums.CheckoutStatusPendingApproval, Version: 3}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return &models.DepositRefund{
				ID:               refundID,
				Status:           enums.RefundStatusPendingApproval,
				RefundableAmount: decimal.NewFromInt(4500),
			}, nil
		},
		updateRefundFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
			refundUpdates = updates
			return nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	err := svc.ApproveRefund(context.Background(), ApproveRefundInput{CheckoutID: checkoutID, Actor: actor})
	require.NoError(t, err)
	assert.Equal(t, enums.RefundStatusApproved, refundUpdates["status"])
	assert.Equal(t, actor.UserID, refundUpdates["approved_by"])
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventRefundApproved,
	}, out.eventTypes())
}

func TestProcessRefundValidatesMethodDetails(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubOutbox{}, stubLedger{})

	err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		CheckoutID: uuid.New(),
		Method:     enums.RefundMethodBankTransfer,
		Actor:      operator(),
	})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))

	err = svc.ProcessRefund(context.Background(), ProcessRefundInput{
		CheckoutID: uuid.New(),
		Method:     enums.RefundMethodCheque,
		Actor:      operator(),
	})
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestProcessRefundEmitsDisbursementRequest(t *testing.T) {
	checkoutID := uuid.New()
	refundID := uuid.New()
	bankRef := "IBAN-AE-0042"
	out := &stubOutbox{}
	var refundUpdates map[string]any
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: checkoutID, Status: enums.CheckoutStatusApproved, Version: 4}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return &models.DepositRefund{
				ID:               refundID,
				Status:           enums.RefundStatusApproved,
				RefundableAmount: decimal.NewFromInt(2500),
			}, nil
		},
		updateRefundFn: func(ctx context.Context, id uuid.UUID, updates map[string]any) error {
			refundUpdates = updates
			return nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	err := svc.ProcessRefund(context.Background(), ProcessRefundInput{
		CheckoutID:     checkoutID,
		Method:         enums.RefundMethodBankTransfer,
		BankAccountRef: &bankRef,
		Actor:          operator(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.RefundStatusProcessing, refundUpdates["status"])
	assert.NotNil(t, refundUpdates["processing_started_at"])
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventDisbursementRequested,
	}, out.eventTypes())
	last := out.events[len(out.events)-1]
	assert.Equal(t, enums.AggregateDepositRefund, last.AggregateType)
	assert.Equal(t, refundID, last.AggregateID)
}

func TestCompleteAfterRefundProcessed(t *testing.T) {
	checkoutID := uuid.New()
	out := &stubOutbox{}
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: checkoutID, Status: enums.CheckoutStatusRefundProcessed, Version: 6}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return &models.DepositRefund{
				ID:               uuid.New(),
				Status:           enums.RefundStatusProcessed,
				RefundableAmount: decimal.NewFromInt(2500),
			}, nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	err := svc.Complete(context.Background(), CompleteInput{CheckoutID: checkoutID, Actor: operator()})
	require.NoError(t, err)
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventCheckoutCompleted,
	}, out.eventTypes())
}

func TestCompleteShortPathOnlyForSettlementDue(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusDepositCalculated, Version: 2}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return &models.DepositRefund{ID: uuid.New(), Status: enums.RefundStatusPendingApproval}, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.Complete(context.Background(), CompleteInput{CheckoutID: uuid.New(), Actor: operator()})
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))
}

func TestCompleteShortPathForSettlementDue(t *testing.T) {
	out := &stubOutbox{}
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusDepositCalculated, Version: 2}, nil
		},
		findRefundByCheckoutFn: func(ctx context.Context, id uuid.UUID) (*models.DepositRefund, error) {
			return &models.DepositRefund{
				ID:         uuid.New(),
				Status:     enums.RefundStatusSettlementDue,
				TenantOwes: true,
				AmountOwed: decimal.NewFromInt(500),
			}, nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			return true, nil
		},
	}
	svc := newTestService(t, repo, out, stubLedger{})

	err := svc.Complete(context.Background(), CompleteInput{CheckoutID: uuid.New(), Actor: operator()})
	require.NoError(t, err)
	assert.Equal(t, []enums.OutboxEventType{
		enums.EventCheckoutStatusChanged,
		enums.EventCheckoutCompleted,
	}, out.eventTypes())
}

func TestTransitionVersionMissIsRetryableConflict(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusPending, Version: 1}, nil
		},
		createInspectionFn: func(ctx context.Context, inspection *models.Inspection) (*models.Inspection, error) {
			return inspection, nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.ScheduleInspection(context.Background(), ScheduleInspectionInput{
		CheckoutID:      uuid.New(),
		InspectorUserID: uuid.New(),
		ScheduledFor:    time.Now().Add(48 * time.Hour),
		Actor:           operator(),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConcurrency, codeOf(err))
	assert.True(t, pkgerrors.As(err).Retryable())
}

func TestHoldRecordsPriorStatus(t *testing.T) {
	var casUpdates map[string]any
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusPendingApproval, Version: 2}, nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			casUpdates = updates
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.Hold(context.Background(), HoldInput{CheckoutID: uuid.New(), Reason: "legal dispute", Actor: operator()})
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusOnHold, casUpdates["status"])
	assert.Equal(t, enums.CheckoutStatusPendingApproval, casUpdates["held_from_status"])
}

func TestHoldRejectsCompletedCheckout(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusCompleted}, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.Hold(context.Background(), HoldInput{CheckoutID: uuid.New(), Reason: "mistake", Actor: operator()})
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))
}

func TestResumeRestoresHeldStatus(t *testing.T) {
	heldFrom := enums.CheckoutStatusRefundProcessing
	var casUpdates map[string]any
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{
				ID:             id,
				Status:         enums.CheckoutStatusOnHold,
				HeldFromStatus: &heldFrom,
				Version:        5,
			}, nil
		},
		updateCASFn: func(ctx context.Context, id uuid.UUID, fromVersion int, updates map[string]any) (bool, error) {
			casUpdates = updates
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.Resume(context.Background(), ResumeInput{CheckoutID: uuid.New(), Actor: operator()})
	require.NoError(t, err)
	assert.Equal(t, enums.CheckoutStatusRefundProcessing, casUpdates["status"])
	assert.Nil(t, casUpdates["held_from_status"])
}

func TestResumeRejectsNonHeldCheckout(t *testing.T) {
	repo := &stubRepo{
		findByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
			return &models.Checkout{ID: id, Status: enums.CheckoutStatusPending}, nil
		},
	}
	svc := newTestService(t, repo, &stubOutbox{}, stubLedger{})

	err := svc.Resume(context.Background(), ResumeInput{CheckoutID: uuid.New(), Actor: operator()})
	assert.Equal(t, pkgerrors.CodeStateConflict, codeOf(err))
}
