package refunds

import (
	"github.com/google/uuid"
)

// ConfirmationInput carries the payment rail's verdict on a disbursement.
// It arrives either on the disbursement subscription or via the rail's
// webhook callback; both paths converge on the same handler.
type ConfirmationInput struct {
	CheckoutID            uuid.UUID
	Succeeded             bool
	DisbursementReference string
	FailureReason         string
	Retryable             bool
}
