package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeCheckoutUpdate NotificationType = "checkout_update"
	NotificationTypeRefundAlert    NotificationType = "refund_alert"
	NotificationTypeReconciliation NotificationType = "reconciliation"
	NotificationTypePDCAlert       NotificationType = "pdc_alert"
	NotificationTypeSystem         NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeCheckoutUpdate,
	NotificationTypeRefundAlert,
	NotificationTypeReconciliation,
	NotificationTypePDCAlert,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
