package chat

import (
	"fmt"
	"strings"

	"omnisuite/models"
)

// historyWindow bounds the transcript kept per session and sent upstream.
const historyWindow = 15

const initialDirective = `You're a friendly marketing assistant for Omni Suite AI named Charles.
Ask this question or provide this information: %q
Keep responses short (2-3 sentences), professional, and engaging.`

const conversationalDirective = `You're a friendly marketing assistant for Omni Suite AI named Charles, specialized as a master in %s.
Help the user with their queries and problems related to %s, providing knowledgeable answers based on best practices in the domain.
Keep responses short (2-3 sentences), professional, and engaging.
If you cannot fully resolve the user's issue based on the conversation, or if they need more in-depth, personalized assistance, or if the problem persists, offer to book a session by exactly saying: %q`

// BuildPrompt renders the persona directive for the session's stage plus the
// bounded transcript into the single prompt string handed to the text
// generator. History is included in chronological order, most recent
// historyWindow turns only.
func BuildPrompt(sess *models.Session) string {
	var sb strings.Builder

	switch sess.Stage {
	case models.StageInitial:
		fmt.Fprintf(&sb, initialDirective, WelcomeMessage)
	default:
		fmt.Fprintf(&sb, conversationalDirective, sess.Service, sess.Service, BookingOffer)
	}

	history := sess.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	if len(history) > 0 {
		sb.WriteString("\n\nConversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Text)
		}
	}
	sb.WriteString("\nassistant:")
	return sb.String()
}
