package models

// Stage identifies a session's position in the intake flow.
type Stage string

const (
	StageInitial        Stage = "initial"
	StageConversational Stage = "conversational"
	StageBooked         Stage = "booked"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a session's history. Immutable once
// appended.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Contact holds the client details collected during booking.
type Contact struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Session is the per-user conversational context. Service is set exactly once,
// on the transition out of StageInitial. LastError is re-derived every turn.
type Session struct {
	ID        string   `json:"id"`
	History   []Turn   `json:"history"`
	Stage     Stage    `json:"stage"`
	Service   string   `json:"service,omitempty"`
	Contact   *Contact `json:"contact,omitempty"`
	LastError string   `json:"lastError,omitempty"`
}

// QueryRequest is the payload coming from the frontend into /query.
type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// QueryResponse is the envelope returned for every conversational turn.
type QueryResponse struct {
	Message     string   `json:"message"`
	SessionID   string   `json:"session_id"`
	Suggestions []string `json:"suggestions"`
}

// AppointmentRequest is the payload for /book_appointment.
type AppointmentRequest struct {
	SessionID     string `json:"session_id"`
	PreferredDay  string `json:"preferred_day"`
	PreferredTime string `json:"preferred_time"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

// AppointmentResponse confirms a booked appointment.
type AppointmentResponse struct {
	Message string `json:"message"`
}

// AppointmentNotification is the payload handed to the notification service
// after a booking is recorded.
type AppointmentNotification struct {
	SessionID     string `json:"sessionId"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDay  string `json:"preferredDay"`
	PreferredTime string `json:"preferredTime"`
	Service       string `json:"service"`
}
