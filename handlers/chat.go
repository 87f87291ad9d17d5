package handlers

import (
	"errors"
	"net/http"

	"omnisuite/models"
	"omnisuite/services/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler exposes the conversational intake surface.
type ChatHandler struct {
	service chat.ChatService
	logger  *zap.Logger
}

func NewChatHandler(service chat.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// Query handles POST /query: one conversational turn. Soft failures
// (unknown session, upstream generation errors) still answer 200 with the
// normal envelope.
func (h *ChatHandler) Query(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.HandleTurn(c.Request.Context(), req.Query, req.SessionID)
	if err != nil {
		h.logger.Error("Error processing query", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing query: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BookAppointment handles POST /book_appointment. Malformed dates and
// emails are the only hard client errors on this surface.
func (h *ChatHandler) BookAppointment(c *gin.Context) {
	var req models.AppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.BookAppointment(c.Request.Context(), req)
	if err != nil {
		var validation chat.ValidationError
		var notFound chat.SessionNotFoundError
		switch {
		case errors.As(err, &validation):
			c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		case errors.As(err, &notFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session not found. Please start a new conversation."})
		default:
			h.logger.Error("Error booking appointment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error booking appointment: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Welcome handles GET /: the static welcome payload.
func (h *ChatHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to Omni Suite AI's Chatbot!"})
}
