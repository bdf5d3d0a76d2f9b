package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCheckout      OutboxAggregateType = "checkout"
	AggregateDepositRefund OutboxAggregateType = "deposit_refund"
	AggregateInspection    OutboxAggregateType = "inspection"
	AggregatePDCCheque     OutboxAggregateType = "pdc_cheque"
	AggregateNotification  OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCheckout,
	AggregateDepositRefund,
	AggregateInspection,
	AggregatePDCCheque,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCheckoutStatusChanged   OutboxEventType = "checkout_status_changed"
	EventCheckoutInitiated       OutboxEventType = "checkout_initiated"
	EventCheckoutCompleted       OutboxEventType = "checkout_completed"
	EventInspectionRecorded      OutboxEventType = "inspection_recorded"
	EventInspectionFailed        OutboxEventType = "inspection_failed"
	EventDepositCalculated       OutboxEventType = "deposit_calculated"
	EventRefundApproved          OutboxEventType = "refund_approved"
	EventDisbursementRequested   OutboxEventType = "refund_disbursement_requested"
	EventRefundProcessed         OutboxEventType = "refund_processed"
	EventRefundFailed            OutboxEventType = "refund_failed"
	EventSettlementDue           OutboxEventType = "settlement_due"
	EventRefundStuckInProcessing OutboxEventType = "refund_stuck_in_processing"
	EventPDCStatusChanged        OutboxEventType = "pdc_status_changed"
	EventTenantMovingOut         OutboxEventType = "tenant_moving_out"
	EventNotificationRequested   OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCheckoutStatusChanged,
	EventCheckoutInitiated,
	EventCheckoutCompleted,
	EventInspectionRecorded,
	EventInspectionFailed,
	EventDepositCalculated,
	EventRefundApproved,
	EventDisbursementRequested,
	EventRefundProcessed,
	EventRefundFailed,
	EventSettlementDue,
	EventRefundStuckInProcessing,
	EventPDCStatusChanged,
	EventTenantMovingOut,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
