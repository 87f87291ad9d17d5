package chat

import "fmt"

// SessionNotFoundError signals that the supplied session identifier is
// unknown or has expired. Sessions are never fabricated for unknown IDs.
type SessionNotFoundError struct {
	ID string
}

func (e SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ValidationError rejects a malformed booking request. Message is safe to
// surface to the client verbatim.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidDateError() error {
	return ValidationError{
		Code:    "invalidDateFormat",
		Message: "Invalid date format. Please use YYYY-MM-DD.",
	}
}

func NewInvalidEmailError() error {
	return ValidationError{
		Code:    "invalidEmail",
		Message: "Invalid email format. Please provide a valid email address.",
	}
}
