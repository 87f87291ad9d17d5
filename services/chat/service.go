package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"omnisuite/models"
	"omnisuite/utils"

	"go.uber.org/zap"
)

// Structural email check: local-part @ domain . TLD of 2-3+ letters.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

const notifyTimeout = 30 * time.Second

// HandleTurn orchestrates one exchange: resolve or create the session, run
// the intake state machine, call the text generator, record the reply. The
// session's turn lock is held for the whole exchange, so concurrent turns on
// the same session serialize while distinct sessions proceed independently.
func (s *DefaultChatService) HandleTurn(ctx context.Context, query, sessionID string) (*models.QueryResponse, error) {
	logger := utils.GetLogger()

	var sess *models.Session
	if sessionID == "" {
		created, err := s.Store.Create()
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		sess = created
	}

	id := sessionID
	if sess != nil {
		id = sess.ID
	}
	release := s.Store.Acquire(id)
	defer release()

	if sess == nil {
		got, err := s.Store.Get(sessionID)
		if err != nil {
			var notFound SessionNotFoundError
			if errors.As(err, &notFound) {
				logger.Warn("Query for unknown session", zap.String("sessionID", sessionID))
				return &models.QueryResponse{
					Message:     SessionNotFoundReply,
					SessionID:   sessionID,
					Suggestions: []string{},
				}, nil
			}
			return nil, fmt.Errorf("load session: %w", err)
		}
		sess = got
	}

	proceed := true
	if query != "" {
		s.Store.AppendTurn(sess, models.Turn{Role: models.RoleUser, Text: query})
		proceed = Advance(sess, query)
	} else {
		sess.LastError = ""
	}

	if !proceed {
		reply := sess.LastError
		if err := s.Store.Save(sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return &models.QueryResponse{
			Message:     reply,
			SessionID:   sess.ID,
			Suggestions: []string{},
		}, nil
	}

	reply, err := s.Generator.Generate(ctx, BuildPrompt(sess))
	if err != nil {
		// Degrade to the fixed fallback; the turn is still recorded and
		// never retried.
		logger.Error("Text generation failed", zap.String("sessionID", sess.ID), zap.Error(err))
		reply = FallbackReply
	}

	s.Store.AppendTurn(sess, models.Turn{Role: models.RoleAssistant, Text: reply})
	if err := s.Store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &models.QueryResponse{
		Message:     reply,
		SessionID:   sess.ID,
		Suggestions: Suggestions(sess),
	}, nil
}

// BookAppointment validates the request, records contact details and a
// confirmation turn on the session, and fires the notification without
// waiting on it.
func (s *DefaultChatService) BookAppointment(ctx context.Context, req models.AppointmentRequest) (*models.AppointmentResponse, error) {
	if _, err := time.Parse("2006-01-02", req.PreferredDay); err != nil {
		return nil, NewInvalidDateError()
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, NewInvalidEmailError()
	}

	release := s.Store.Acquire(req.SessionID)
	defer release()

	sess, err := s.Store.Get(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.Contact = &models.Contact{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	// A session that never chose a service stays in intake; StageBooked
	// always implies a bound service.
	if sess.Stage == models.StageConversational {
		sess.Stage = models.StageBooked
	}

	confirmation := fmt.Sprintf("Appointment booked for %s at %s. We'll contact you to confirm!",
		req.PreferredDay, req.PreferredTime)
	s.Store.AppendTurn(sess, models.Turn{Role: models.RoleAssistant, Text: confirmation})
	if err := s.Store.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	n := models.AppointmentNotification{
		SessionID:     sess.ID,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		PreferredDay:  req.PreferredDay,
		PreferredTime: req.PreferredTime,
		Service:       sess.Service,
	}
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.Notifier.SendAppointmentConfirmation(nctx, n); err != nil {
			utils.GetLogger().Error("Appointment notification failed",
				zap.String("sessionID", sess.ID), zap.Error(err))
		}
	}()

	return &models.AppointmentResponse{Message: confirmation}, nil
}
