package enums

import "fmt"

// DeductionCategory buckets a deposit deduction line.
type DeductionCategory string

const (
	DeductionCategoryCleaning    DeductionCategory = "cleaning"
	DeductionCategoryDamage      DeductionCategory = "damage"
	DeductionCategoryMaintenance DeductionCategory = "maintenance"
	DeductionCategoryUnpaidRent  DeductionCategory = "unpaid_rent"
	DeductionCategoryUtilities   DeductionCategory = "utilities"
	DeductionCategoryOther       DeductionCategory = "other"
)

var validDeductionCategories = []DeductionCategory{
	DeductionCategoryCleaning,
	DeductionCategoryDamage,
	DeductionCategoryMaintenance,
	DeductionCategoryUnpaidRent,
	DeductionCategoryUtilities,
	DeductionCategoryOther,
}

// String implements fmt.Stringer.
func (d DeductionCategory) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeductionCategory.
func (d DeductionCategory) IsValid() bool {
	for _, candidate := range validDeductionCategories {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeductionCategory converts raw input into a DeductionCategory.
func ParseDeductionCategory(value string) (DeductionCategory, error) {
	for _, candidate := range validDeductionCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deduction category %q", value)
}
