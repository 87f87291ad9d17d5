package notification

import (
	"context"
	"fmt"

	"omnisuite/models"

	"github.com/hibiken/asynq"
)

// QueueNotificationService enqueues confirmations onto the asynq queue; the
// background worker owns actual delivery. Enqueue failures count as
// NotificationDeliveryFailure and are logged by the caller like any other.
type QueueNotificationService struct {
	client *asynq.Client
}

func NewQueueNotificationService(client *asynq.Client) *QueueNotificationService {
	return &QueueNotificationService{client: client}
}

func (s *QueueNotificationService) SendAppointmentConfirmation(ctx context.Context, n models.AppointmentNotification) error {
	task, err := NewAppointmentEmailTask(n)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("enqueue appointment email: %w", err)
	}
	return nil
}
