package enums

import "fmt"

// RefundStatus tracks the deposit refund attached to a checkout.
type RefundStatus string

const (
	RefundStatusPending         RefundStatus = "pending"
	RefundStatusPendingApproval RefundStatus = "pending_approval"
	RefundStatusApproved        RefundStatus = "approved"
	RefundStatusProcessing      RefundStatus = "processing"
	RefundStatusProcessed       RefundStatus = "processed"
	RefundStatusFailed          RefundStatus = "failed"
	// RefundStatusSettlementDue marks the tenant-owes branch: nothing is
	// disbursed and the balance is collected outside the refund rail.
	RefundStatusSettlementDue RefundStatus = "settlement_due"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusPending,
	RefundStatusPendingApproval,
	RefundStatusApproved,
	RefundStatusProcessing,
	RefundStatusProcessed,
	RefundStatusFailed,
	RefundStatusSettlementDue,
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRefundStatus converts raw input into a RefundStatus.
func ParseRefundStatus(value string) (RefundStatus, error) {
	for _, candidate := range validRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
