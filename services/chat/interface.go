package chat

import (
	"context"

	"omnisuite/models"
	"omnisuite/services/intelligence"
	"omnisuite/services/notification"
)

// ChatService drives the staged intake conversation and the booking
// operation.
type ChatService interface {
	// HandleTurn processes one conversational exchange. An empty sessionID
	// creates a fresh session; an unknown one degrades to the soft
	// session-not-found reply rather than an error.
	HandleTurn(ctx context.Context, query, sessionID string) (*models.QueryResponse, error)
	// BookAppointment validates and records an appointment on the session,
	// then kicks off a best-effort confirmation email.
	BookAppointment(ctx context.Context, req models.AppointmentRequest) (*models.AppointmentResponse, error)
}

// DefaultChatService is the production implementation.
type DefaultChatService struct {
	Store     SessionStore
	Generator intelligence.TextGenerator
	Notifier  notification.NotificationService
}
