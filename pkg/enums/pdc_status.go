package enums

import "fmt"

// PDCStatus tracks the lifecycle of a post-dated cheque.
type PDCStatus string

const (
	PDCStatusReceived  PDCStatus = "received"
	PDCStatusDue       PDCStatus = "due"
	PDCStatusDeposited PDCStatus = "deposited"
	PDCStatusCleared   PDCStatus = "cleared"
	PDCStatusBounced   PDCStatus = "bounced"
)

var validPDCStatuses = []PDCStatus{
	PDCStatusReceived,
	PDCStatusDue,
	PDCStatusDeposited,
	PDCStatusCleared,
	PDCStatusBounced,
}

// String implements fmt.Stringer.
func (p PDCStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PDCStatus.
func (p PDCStatus) IsValid() bool {
	for _, candidate := range validPDCStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsSettled reports whether the cheque reached a terminal outcome.
func (p PDCStatus) IsSettled() bool {
	return p == PDCStatusCleared || p == PDCStatusBounced
}

// ParsePDCStatus converts raw input into a PDCStatus.
func ParsePDCStatus(value string) (PDCStatus, error) {
	for _, candidate := range validPDCStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pdc status %q", value)
}
