package checkouts

import (
	"fmt"

	"github.com/karimnasser/propflow-backend/pkg/enums"
	pkgerrors "github.com/karimnasser/propflow-backend/pkg/errors"
)

// transitions is the forward edge list of the checkout workflow. Hold and
// resume are handled separately because on_hold resumes to the status it
// was entered from.
var transitions = map[enums.CheckoutStatus][]enums.CheckoutStatus{
	enums.CheckoutStatusPending: {
		enums.CheckoutStatusInspectionScheduled,
	},
	enums.CheckoutStatusInspectionScheduled: {
		enums.CheckoutStatusInspectionComplete,
	},
	enums.CheckoutStatusInspectionComplete: {
		// re-recording an inspection before the money side starts is allowed
		enums.CheckoutStatusInspectionComplete,
		enums.CheckoutStatusDepositCalculated,
	},
	enums.CheckoutStatusDepositCalculated: {
		// recalculation with revised deductions
		enums.CheckoutStatusDepositCalculated,
		enums.CheckoutStatusPendingApproval,
		enums.CheckoutStatusApproved,
		// settlement-due checkouts have nothing to disburse
		enums.CheckoutStatusCompleted,
	},
	enums.CheckoutStatusPendingApproval: {
		enums.CheckoutStatusDepositCalculated,
		enums.CheckoutStatusApproved,
	},
	enums.CheckoutStatusApproved: {
		enums.CheckoutStatusRefundProcessing,
		// recalculation after approval revokes the approval and, above the
		// threshold, lands back in pending_approval
		enums.CheckoutStatusDepositCalculated,
		enums.CheckoutStatusPendingApproval,
	},
	enums.CheckoutStatusRefundProcessing: {
		enums.CheckoutStatusRefundProcessed,
		// a retryable disbursement failure sends the checkout back for re-processing
		enums.CheckoutStatusApproved,
	},
	enums.CheckoutStatusRefundProcessed: {
		enums.CheckoutStatusCompleted,
	},
	enums.CheckoutStatusCompleted: {},
	enums.CheckoutStatusOnHold:    {},
}

// CanTransition reports whether from -> to is a legal workflow edge.
func CanTransition(from, to enums.CheckoutStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns the legal target statuses from the given status.
func AllowedFrom(from enums.CheckoutStatus) []enums.CheckoutStatus {
	allowed := transitions[from]
	out := make([]enums.CheckoutStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CanHold reports whether a checkout in the given status may be paused.
func CanHold(from enums.CheckoutStatus) bool {
	switch from {
	case enums.CheckoutStatusCompleted, enums.CheckoutStatusOnHold:
		return false
	default:
		return true
	}
}

// validateTransition returns a state-conflict error describing the attempted
// operation, the current status, and the legal next statuses.
func validateTransition(current, target enums.CheckoutStatus, operation string) error {
	if CanTransition(current, target) {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("%s not allowed while checkout is %s", operation, current)).
		WithDetails(map[string]any{
			"operation":      operation,
			"current_status": current,
			"target_status":  target,
			"allowed":        AllowedFrom(current),
		})
}
