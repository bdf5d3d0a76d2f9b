package deposits

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
)

// DeductionInput is one itemized charge against the deposit.
type DeductionInput struct {
	Category      enums.DeductionCategory
	Amount        decimal.Decimal
	Justification string
}

// CalculationInput carries everything the calculator needs. The outstanding
// amount is a snapshot of the tenant ledger taken in the same transaction.
type CalculationInput struct {
	DepositAmount     decimal.Decimal
	Deductions        []DeductionInput
	OutstandingAmount decimal.Decimal
}

// Calculation is the computed result. RefundableAmount never goes negative;
// any shortfall is carried as AmountOwed with TenantOwes set.
type Calculation struct {
	DepositAmount     decimal.Decimal
	TotalDeductions   decimal.Decimal
	OutstandingAmount decimal.Decimal
	RefundableAmount  decimal.Decimal
	TenantOwes        bool
	AmountOwed        decimal.Decimal
}

// Calculate computes the refundable amount from the deposit, itemized
// deductions, and the tenant's outstanding balance.
func Calculate(input CalculationInput) (*Calculation, error) {
	if input.DepositAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit amount must not be negative")
	}
	if input.OutstandingAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outstanding amount must not be negative")
	}

	total := decimal.Zero
	for i, d := range input.Deductions {
		if err := validateDeduction(i, d); err != nil {
			return nil, err
		}
		total = total.Add(d.Amount)
	}

	net := input.DepositAmount.Sub(total).Sub(input.OutstandingAmount)

	calc := &Calculation{
		DepositAmount:     input.DepositAmount,
		TotalDeductions:   total,
		OutstandingAmount: input.OutstandingAmount,
		RefundableAmount:  net,
		AmountOwed:        decimal.Zero,
	}
	if net.IsNegative() {
		calc.RefundableAmount = decimal.Zero
		calc.AmountOwed = net.Neg()
		calc.TenantOwes = true
	}
	return calc, nil
}

func validateDeduction(index int, d DeductionInput) error {
	if !d.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("deduction %d: invalid category %q", index, d.Category))
	}
	if d.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("deduction %d: amount must not be negative", index))
	}
	if d.Justification == "" {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("deduction %d: justification is required", index))
	}
	return nil
}
