package deposits

import (
	"github.com/shopspring/decimal"
)

// ApprovalGate decides whether a computed refund needs elevated sign-off
// before disbursement. The threshold comes from configuration, not code.
type ApprovalGate struct {
	threshold decimal.Decimal
}

// NewApprovalGate builds a gate with the configured threshold.
func NewApprovalGate(threshold decimal.Decimal) *ApprovalGate {
	return &ApprovalGate{threshold: threshold}
}

// RequiresApproval reports whether the refundable amount strictly exceeds
// the threshold. Amounts equal to the threshold auto-approve.
func (g *ApprovalGate) RequiresApproval(refundable decimal.Decimal) bool {
	return refundable.GreaterThan(g.threshold)
}
