package chat

import (
	"strings"

	"omnisuite/models"
)

// ServiceCatalog lists the canonical support categories offered during
// intake. Matching is case-insensitive and whitespace-trimmed, but the
// session always records the canonical label.
var ServiceCatalog = []string{
	"Digital Marketing",
	"Brand",
	"Custom Software Development/Mobile Application Development",
	"Website Design",
}

// WelcomeMessage is the assistant's opening menu for a fresh session.
const WelcomeMessage = "Hello, and welcome to Omni Suite AI!\n\n" +
	"My name is Charles. How can I help you today?\n\n" +
	"Do you need support with any of the following?\n" +
	"- Digital Marketing\n" +
	"- Brand\n" +
	"- Custom Software Development/Mobile Application Development\n" +
	"- Website Design"

// serviceSelectionError is returned verbatim when intake input does not
// match a catalog entry. No generative call is made on this path.
const serviceSelectionError = "Please select one of the following: Digital Marketing, Brand, " +
	"Custom Software Development/Mobile Application Development, or Website Design."

// BookingOffer is the exact sentence the model is instructed to reproduce
// when it judges escalation to a booked session is warranted.
const BookingOffer = "Please provide your full name, email address, phone number, " +
	"and preferred day and time for a session with our Strategy Director, Ryan Jenkins."

// FallbackReply substitutes for the model's answer when the upstream call
// fails. It is still appended to history so the transcript stays consistent.
const FallbackReply = "Sorry, something went wrong while processing your request. " +
	"Please try again or contact support."

// SessionNotFoundReply is the soft-fail reply for unknown or expired session
// identifiers on the conversational endpoint.
const SessionNotFoundReply = "Session not found. Please start a new conversation."

// MatchService resolves user input to a canonical catalog label. Exact match
// only, after case-folding and trimming; no fuzzy or partial matching.
func MatchService(input string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, svc := range ServiceCatalog {
		if normalized == strings.ToLower(svc) {
			return svc, true
		}
	}
	return "", false
}

// Advance validates input against the session's current stage and applies the
// resulting transition in place. It reports whether the turn may proceed to
// the language model; when false, the session's LastError holds the reply to
// return verbatim.
//
// Only StageInitial performs stage-driven validation. Later stages pass all
// input through untouched, so a service label re-submitted after the
// transition is treated as an ordinary conversational message.
func Advance(sess *models.Session, input string) bool {
	sess.LastError = ""

	if input == "" || sess.Stage != models.StageInitial {
		return true
	}

	if svc, ok := MatchService(input); ok {
		sess.Service = svc
		sess.Stage = models.StageConversational
		return true
	}

	sess.LastError = serviceSelectionError
	return false
}

// Suggestions returns the quick-reply strings for the session's current
// state: the full catalog while the intake menu is pending, empty everywhere
// else. Never nil, so the JSON envelope always carries an array.
func Suggestions(sess *models.Session) []string {
	if sess.Stage == models.StageInitial && sess.LastError == "" {
		return append([]string{}, ServiceCatalog...)
	}
	return []string{}
}
