package deposits

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

func TestCalculateStandardBreakdown(t *testing.T) {
	calc, err := Calculate(CalculationInput{
		DepositAmount: dec("5000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryCleaning, Amount: dec("300.00"), Justification: "move-out deep clean"},
			{Category: enums.DeductionCategoryDamage, Amount: dec("200.00"), Justification: "bedroom wall repair"},
		},
		OutstandingAmount: dec("0.00"),
	})
	require.NoError(t, err)

	assert.True(t, calc.RefundableAmount.Equal(dec("4500.00")), "refundable = %s", calc.RefundableAmount)
	assert.True(t, calc.TotalDeductions.Equal(dec("500.00")))
	assert.False(t, calc.TenantOwes)
	assert.True(t, calc.AmountOwed.IsZero())
}

func TestCalculateNoDeductions(t *testing.T) {
	calc, err := Calculate(CalculationInput{
		DepositAmount:     dec("2000.00"),
		OutstandingAmount: dec("0.00"),
	})
	require.NoError(t, err)

	assert.True(t, calc.RefundableAmount.Equal(dec("2000.00")))
	assert.False(t, calc.TenantOwes)
}

func TestCalculateTenantOwes(t *testing.T) {
	calc, err := Calculate(CalculationInput{
		DepositAmount: dec("1000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryDamage, Amount: dec("1500.00"), Justification: "flood damage to flooring"},
		},
		OutstandingAmount: dec("0.00"),
	})
	require.NoError(t, err)

	assert.True(t, calc.RefundableAmount.IsZero(), "refundable clamps at zero")
	assert.True(t, calc.TenantOwes)
	assert.True(t, calc.AmountOwed.Equal(dec("500.00")), "owed = %s", calc.AmountOwed)
}

func TestCalculateOutstandingBalanceReducesRefund(t *testing.T) {
	calc, err := Calculate(CalculationInput{
		DepositAmount: dec("3000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryCleaning, Amount: dec("250.00"), Justification: "carpet cleaning"},
		},
		OutstandingAmount: dec("1200.00"),
	})
	require.NoError(t, err)

	assert.True(t, calc.RefundableAmount.Equal(dec("1550.00")))
	assert.False(t, calc.TenantOwes)
}

func TestCalculateExactlyZeroRefund(t *testing.T) {
	calc, err := Calculate(CalculationInput{
		DepositAmount: dec("1000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryUnpaidRent, Amount: dec("1000.00"), Justification: "final month rent"},
		},
		OutstandingAmount: dec("0.00"),
	})
	require.NoError(t, err)

	assert.True(t, calc.RefundableAmount.IsZero())
	assert.False(t, calc.TenantOwes, "exactly zero is not a debt")
	assert.True(t, calc.AmountOwed.IsZero())
}

func TestCalculateRejectsNegativeDeduction(t *testing.T) {
	_, err := Calculate(CalculationInput{
		DepositAmount: dec("1000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryOther, Amount: dec("-10.00"), Justification: "credit"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestCalculateRejectsMissingJustification(t *testing.T) {
	_, err := Calculate(CalculationInput{
		DepositAmount: dec("1000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategoryDamage, Amount: dec("10.00")},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestCalculateRejectsUnknownCategory(t *testing.T) {
	_, err := Calculate(CalculationInput{
		DepositAmount: dec("1000.00"),
		Deductions: []DeductionInput{
			{Category: enums.DeductionCategory("pet_fee"), Amount: dec("10.00"), Justification: "pet"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, codeOf(err))
}

func TestCalculateRejectsNegativeDeposit(t *testing.T) {
	_, err := Calculate(CalculationInput{DepositAmount: dec("-1.00")})
	require.Error(t, err)
}

func TestApprovalGate(t *testing.T) {
	gate := NewApprovalGate(dec("3000.00"))

	assert.True(t, gate.RequiresApproval(dec("4500.00")))
	assert.True(t, gate.RequiresApproval(dec("3000.01")))
	assert.False(t, gate.RequiresApproval(dec("3000.00")), "equal to threshold auto-approves")
	assert.False(t, gate.RequiresApproval(dec("2000.00")))
	assert.False(t, gate.RequiresApproval(decimal.Zero))
}
