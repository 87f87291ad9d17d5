package cron

import (
	"context"
	"encoding/json"
	"time"

	"omnisuite/config"
	"omnisuite/models"
	"omnisuite/services/notification"
	"omnisuite/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitEmailWorker runs the async notification worker in the background. The
// worker drains appointment-email tasks and delivers them through the mailer;
// a failed delivery is retried by asynq up to the task's MaxRetry and then
// dropped with a log line. Nothing here ever reaches a caller.
func InitEmailWorker(mailer notification.NotificationService) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeAppointmentEmail, handleAppointmentEmailTask(mailer))

	go func() {
		logger.Info("Starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("Notification worker failed to start",
					zap.Int("attempt", attempts), zap.Error(err))
				if attempts == maxAttempts {
					logger.Fatal("Notification worker gave up after max attempts")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleAppointmentEmailTask(mailer notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var n models.AppointmentNotification
		if err := json.Unmarshal(task.Payload(), &n); err != nil {
			logger.Error("Invalid appointment email payload", zap.Error(err))
			return err
		}

		if err := mailer.SendAppointmentConfirmation(ctx, n); err != nil {
			logger.Error("Failed to send appointment email",
				zap.String("sessionID", n.SessionID),
				zap.String("day", n.PreferredDay),
				zap.Error(err))
			return err
		}

		logger.Info("Appointment email sent",
			zap.String("sessionID", n.SessionID),
			zap.String("day", n.PreferredDay),
			zap.String("time", n.PreferredTime))
		return nil
	}
}
