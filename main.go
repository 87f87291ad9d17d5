// File: omnisuite/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"omnisuite/config"
	"omnisuite/cron"
	"omnisuite/handlers"
	"omnisuite/middleware"
	"omnisuite/routes"
	"omnisuite/services/chat"
	ai "omnisuite/services/intelligence"
	"omnisuite/services/notification"
	"omnisuite/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	if config.AppConfig.GeminiAPIKey == "" {
		logger.Sugar().Fatal("main: GEMINI_API_KEY is not set")
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Session store.
	ttl := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	var store chat.SessionStore
	switch config.AppConfig.SessionStore {
	case "redis":
		store = chat.NewRedisSessionStore(utils.GetSessionCacheClient(), ttl)
	default:
		store = chat.NewMemorySessionStore(ttl)
	}

	// Text generator.
	generator, err := ai.NewGeminiClient(
		config.AppConfig.GeminiAPIKey,
		config.AppConfig.GeminiModel,
		time.Duration(config.AppConfig.GeminiTimeoutSeconds)*time.Second,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
	}

	// Appointment notifications: direct SMTP, or queued through asynq.
	mailer := &notification.SMTPMailer{
		Host:     config.AppConfig.SMTPHost,
		Port:     config.AppConfig.SMTPPort,
		Sender:   config.AppConfig.SMTPSender,
		Password: config.AppConfig.SMTPPassword,
		Inbox:    config.AppConfig.NotifyInbox,
	}
	var notifier notification.NotificationService = mailer
	if config.AppConfig.NotifyMode == "queue" {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		})
		defer asynqClient.Close()
		notifier = notification.NewQueueNotificationService(asynqClient)
		cron.InitEmailWorker(mailer)
	}

	chatService := &chat.DefaultChatService{
		Store:     store,
		Generator: generator,
		Notifier:  notifier,
	}
	chatHandler := handlers.NewChatHandler(chatService, logger)

	routes.RegisterRoutes(router, chatHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "7008"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
