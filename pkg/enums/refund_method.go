package enums

import "fmt"

// RefundMethod is how the deposit refund is disbursed.
type RefundMethod string

const (
	RefundMethodBankTransfer RefundMethod = "bank_transfer"
	RefundMethodCheque       RefundMethod = "cheque"
	RefundMethodCash         RefundMethod = "cash"
)

var validRefundMethods = []RefundMethod{
	RefundMethodBankTransfer,
	RefundMethodCheque,
	RefundMethodCash,
}

// String implements fmt.Stringer.
func (r RefundMethod) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundMethod.
func (r RefundMethod) IsValid() bool {
	for _, candidate := range validRefundMethods {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundMethod converts raw input into a RefundMethod.
func ParseRefundMethod(value string) (RefundMethod, error) {
	for _, candidate := range validRefundMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund method %q", value)
}
