package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/havenlabs/haven-agent/internal/app/agentflow"
	"github.com/havenlabs/haven-agent/internal/domain"
	"github.com/havenlabs/haven-agent/internal/observability"
)

const welcomeText = "Hi, I'm Haven. I'm here to support you in your recovery, " +
	"one day at a time. How are you feeling today?"

const defaultHistoryLimit = 20

// Service runs conversational turns: it owns session and message
// persistence, serializes turns per session, and delegates each turn to
// the trigger orchestrator.
type Service struct {
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	orchestrator *agentflow.Orchestrator
	historyLimit int
	now          func() time.Time

	// locks serializes turns of the same session. Cross-session turns
	// run in parallel.
	locksMu sync.Mutex
	locks   map[domain.SessionID]*sessionLock

	totalTurns    atomic.Int64
	degradedTurns atomic.Int64
}

// sessionLock is a reference-counted per-session mutex. Entries leave the
// map only when no caller holds or waits on them, so a waiter never ends
// up on a stale mutex while a new caller creates a fresh one.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	orchestrator *agentflow.Orchestrator,
) *Service {
	return &Service{
		sessionStore: sessionStore,
		messageStore: messageStore,
		orchestrator: orchestrator,
		historyLimit: defaultHistoryLimit,
		now:          time.Now,
		locks:        make(map[domain.SessionID]*sessionLock),
	}
}

func (s *Service) lockSession(id domain.SessionID) *sessionLock {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()
	l.mu.Lock()
	return l
}

func (s *Service) unlockSession(id domain.SessionID, l *sessionLock) {
	l.mu.Unlock()
	s.locksMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
	s.locksMu.Unlock()
}

type StartSessionInput struct {
	UserID domain.UserID
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.Message
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)
	log.Info("starting new session")

	session := newSession(domain.SessionID(uuid.NewString()), in.UserID, now)
	if err := s.sessionStore.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	welcome := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleAgent,
		Text:      welcomeText,
		CreatedAt: now,
	}
	if err := s.messageStore.AppendMessage(welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)
	return &StartSessionOutput{Session: session, Welcome: welcome}, nil
}

func newSession(id domain.SessionID, userID domain.UserID, now time.Time) *domain.Session {
	return &domain.Session{
		ID:           id,
		UserID:       userID,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
		Phase:        domain.PhaseIdle,
	}
}

type SendMessageInput struct {
	SessionID domain.SessionID
	UserID    domain.UserID
	Text      string
}

type SendMessageOutput struct {
	UserMessage  *domain.Message
	AgentMessage *domain.Message
	Degraded     bool
	Evaluation   *agentflow.Result
}

// SendMessage runs one full conversational turn. An unknown session ID is
// not an error: a fresh session is created under the same ID so a client
// whose session was evicted can keep talking.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	l := s.lockSession(in.SessionID)
	defer s.unlockSession(in.SessionID, l)

	log := observability.LoggerFromContext(ctx).With(
		"session_id", in.SessionID,
		"user_id", in.UserID,
	)

	session, err := s.sessionStore.GetSession(in.SessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		log.Info("session unknown, creating lazily")
		session = newSession(in.SessionID, in.UserID, s.now())
		if cerr := s.sessionStore.CreateSession(session); cerr != nil {
			log.Error("failed to create session", "error", cerr)
			return nil, cerr
		}
	} else if err != nil {
		return nil, err
	}

	// History is read before the new message lands so the LLM context
	// carries it exactly once, as the explicit new user turn.
	history, err := s.messageStore.GetMessagesBySession(session.ID, s.historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	now := s.now()
	userMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleUser,
		Text:      in.Text,
		CreatedAt: now,
	}
	if err := s.messageStore.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	convCtx := domain.ConversationContext{
		SessionID:   session.ID,
		UserID:      session.UserID,
		UserMessage: in.Text,
		History:     history,
	}

	result := s.orchestrator.Run(ctx, in.Text, session, convCtx)
	s.totalTurns.Inc()
	if result.Degraded {
		s.degradedTurns.Inc()
	}

	agentMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleAgent,
		Text:      result.Reply,
		CreatedAt: s.now(),
		Degraded:  result.Degraded,
	}
	if err := s.messageStore.AppendMessage(agentMsg); err != nil {
		log.Error("failed to append agent message", "error", err)
		return nil, err
	}

	session.UpdatedAt = s.now()
	session.LastActivity = session.UpdatedAt
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("turn completed", "degraded", result.Degraded, "phase", session.Phase)
	return &SendMessageOutput{
		UserMessage:  userMsg,
		AgentMessage: agentMsg,
		Degraded:     result.Degraded,
		Evaluation:   &result,
	}, nil
}

// GetTimeline returns a session and its messages, oldest first. Reading a
// session counts as activity for idle eviction.
func (s *Service) GetTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.Message, error) {
	// The activity refresh is a read-modify-write of the whole session
	// document; without the session lock it would race a turn in flight
	// and write back a stale phase and tracker.
	l := s.lockSession(sessionID)
	defer s.unlockSession(sessionID, l)

	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	messages, err := s.messageStore.GetMessagesBySession(sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	session.LastActivity = s.now()
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error("failed to refresh session activity", "error", err)
	}

	return session, messages, nil
}

// EndSession deletes a session and its messages. Temporary tone memory
// lives on the session, so it dies here with everything else; recorded
// trigger assessments are kept.
func (s *Service) EndSession(ctx context.Context, sessionID domain.SessionID) error {
	l := s.lockSession(sessionID)
	defer s.unlockSession(sessionID, l)

	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)
	log.Info("ending session")

	if _, err := s.sessionStore.GetSession(sessionID); err != nil {
		return err
	}
	if err := s.messageStore.DeleteMessagesBySession(sessionID); err != nil {
		log.Error("failed to delete messages", "error", err)
		return err
	}
	if err := s.sessionStore.DeleteSession(sessionID); err != nil {
		log.Error("failed to delete session", "error", err)
		return err
	}
	return nil
}

// Stats reports turn counters for the health endpoint.
type Stats struct {
	TotalTurns    int64 `json:"total_turns"`
	DegradedTurns int64 `json:"degraded_turns"`
}

func (s *Service) Stats() Stats {
	return Stats{
		TotalTurns:    s.totalTurns.Load(),
		DegradedTurns: s.degradedTurns.Load(),
	}
}
