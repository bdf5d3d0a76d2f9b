package enums

import "fmt"

// CheckoutReason records why the tenant is leaving the unit.
type CheckoutReason string

const (
	CheckoutReasonLeaseEnd         CheckoutReason = "lease_end"
	CheckoutReasonEarlyTermination CheckoutReason = "early_termination"
	CheckoutReasonEviction         CheckoutReason = "eviction"
	CheckoutReasonOther            CheckoutReason = "other"
)

var validCheckoutReasons = []CheckoutReason{
	CheckoutReasonLeaseEnd,
	CheckoutReasonEarlyTermination,
	CheckoutReasonEviction,
	CheckoutReasonOther,
}

// String implements fmt.Stringer.
func (c CheckoutReason) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutReason.
func (c CheckoutReason) IsValid() bool {
	for _, candidate := range validCheckoutReasons {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCheckoutReason converts raw input into a CheckoutReason.
func ParseCheckoutReason(value string) (CheckoutReason, error) {
	for _, candidate := range validCheckoutReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout reason %q", value)
}
