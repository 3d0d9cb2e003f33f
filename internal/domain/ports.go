package domain

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is the store's not-found signal. Callers of the turn
// service treat it as "create a fresh session", never as a user-visible
// failure.
var ErrSessionNotFound = errors.New("session not found")

// LLMClient defines how the core application talks to an LLM service.
// The same call serves free-form replies and the structured trigger
// analysis; only the system prompt differs.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the LLM minimal context about the conversation.
type ConversationContext struct {
	SessionID SessionID
	UserID    UserID
	// UserMessage is the new message for this turn.
	UserMessage string
	// History is the last N messages, oldest first.
	History []*Message
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
	DeleteSession(id SessionID) error
	// ListIdleSessions returns the IDs of sessions whose LastActivity is
	// older than the cutoff. Used by the eviction sweep.
	ListIdleSessions(cutoff time.Time) ([]SessionID, error)
}

// MessageStore defines message persistence.
type MessageStore interface {
	AppendMessage(msg *Message) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*Message, error)
	DeleteMessagesBySession(sessionID SessionID) error
}

// AssessmentStore persists trigger assessments for the dashboard.
type AssessmentStore interface {
	AppendAssessment(a *TriggerAssessment) error
	ListAssessmentsBySession(sessionID SessionID, limit int) ([]*TriggerAssessment, error)
}

// FallbackReply is a canned supportive response used when the LLM is down.
type FallbackReply struct {
	Text     string
	Category string
	Priority string
}

// Responder produces a supportive reply without any external dependency.
type Responder interface {
	Respond(userMessage string) FallbackReply
}
