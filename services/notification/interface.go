package notification

import (
	"context"

	"omnisuite/models"
)

// NotificationService delivers appointment confirmations. Delivery is best
// effort: callers log failures and move on, and a failed send never rolls
// back the booking already recorded on the session.
type NotificationService interface {
	SendAppointmentConfirmation(ctx context.Context, n models.AppointmentNotification) error
}
