package enums

import "fmt"

// CheckoutStatus tracks the lifecycle of a tenant checkout.
type CheckoutStatus string

const (
	CheckoutStatusPending             CheckoutStatus = "pending"
	CheckoutStatusInspectionScheduled CheckoutStatus = "inspection_scheduled"
	CheckoutStatusInspectionComplete  CheckoutStatus = "inspection_complete"
	CheckoutStatusDepositCalculated   CheckoutStatus = "deposit_calculated"
	CheckoutStatusPendingApproval     CheckoutStatus = "pending_approval"
	CheckoutStatusApproved            CheckoutStatus = "approved"
	CheckoutStatusRefundProcessing    CheckoutStatus = "refund_processing"
	CheckoutStatusRefundProcessed     CheckoutStatus = "refund_processed"
	CheckoutStatusCompleted           CheckoutStatus = "completed"
	CheckoutStatusOnHold              CheckoutStatus = "on_hold"
)

var validCheckoutStatuses = []CheckoutStatus{
	CheckoutStatusPending,
	CheckoutStatusInspectionScheduled,
	CheckoutStatusInspectionComplete,
	CheckoutStatusDepositCalculated,
	CheckoutStatusPendingApproval,
	CheckoutStatusApproved,
	CheckoutStatusRefundProcessing,
	CheckoutStatusRefundProcessed,
	CheckoutStatusCompleted,
	CheckoutStatusOnHold,
}

// String implements fmt.Stringer.
func (c CheckoutStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CheckoutStatus.
func (c CheckoutStatus) IsValid() bool {
	for _, candidate := range validCheckoutStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the checkout lifecycle.
// ON_HOLD is a side state, not terminal: it resumes to the held-from status.
func (c CheckoutStatus) IsTerminal() bool {
	return c == CheckoutStatusCompleted
}

// ParseCheckoutStatus converts raw input into a CheckoutStatus.
func ParseCheckoutStatus(value string) (CheckoutStatus, error) {
	for _, candidate := range validCheckoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout status %q", value)
}
