package notification

import (
	"encoding/json"
	"fmt"

	"omnisuite/models"

	"github.com/hibiken/asynq"
)

// TypeAppointmentEmail is the asynq task type for confirmation emails.
const TypeAppointmentEmail = "appointment:email"

// NewAppointmentEmailTask wraps a notification payload into an asynq task.
func NewAppointmentEmailTask(n models.AppointmentNotification) (*asynq.Task, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal appointment notification: %w", err)
	}
	return asynq.NewTask(TypeAppointmentEmail, b), nil
}
