package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/havenlabs/haven-agent/internal/domain"
)

const (
	sessionKeyPrefix    = "haven:session:"
	messagesKeyPrefix   = "haven:messages:"
	assessmentKeyPrefix = "haven:assessments:"
)

// Store implements the session, message and assessment stores on Redis.
// Sessions are stored as single JSON values so the tracker bitsets and
// the tone memory round-trip unchanged; messages and assessments are
// JSON entries in per-session lists.
type Store struct {
	client *redis.Client
}

func NewStore(addr string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewStoreWithClient wires an existing client, used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(id domain.SessionID) string    { return sessionKeyPrefix + string(id) }
func messagesKey(id domain.SessionID) string   { return messagesKeyPrefix + string(id) }
func assessmentKey(id domain.SessionID) string { return assessmentKeyPrefix + string(id) }

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(session *domain.Session) error {
	return s.writeSession(session)
}

func (s *Store) UpdateSession(session *domain.Session) error {
	ctx := context.Background()

	n, err := s.client.Exists(ctx, sessionKey(session.ID)).Result()
	if err != nil {
		return fmt.Errorf("redis UpdateSession: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return s.writeSession(session)
}

func (s *Store) writeSession(session *domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis encode session: %w", err)
	}
	if err := s.client.Set(context.Background(), sessionKey(session.ID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis write session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	raw, err := s.client.Get(context.Background(), sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GetSession: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("redis decode session: %w", err)
	}
	return &session, nil
}

func (s *Store) DeleteSession(id domain.SessionID) error {
	if err := s.client.Del(context.Background(), sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis DeleteSession: %w", err)
	}
	return nil
}

func (s *Store) ListIdleSessions(cutoff time.Time) ([]domain.SessionID, error) {
	ctx := context.Background()

	var ids []domain.SessionID
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis ListIdleSessions: %w", err)
		}
		var session domain.Session
		if err := json.Unmarshal(raw, &session); err != nil {
			continue
		}
		if !session.LastActivity.After(cutoff) {
			ids = append(ids, session.ID)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis ListIdleSessions scan: %w", err)
	}
	return ids, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("redis encode message: %w", err)
	}
	if err := s.client.RPush(context.Background(), messagesKey(msg.SessionID), raw).Err(); err != nil {
		return fmt.Errorf("redis AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raws, err := s.client.LRange(context.Background(), messagesKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis GetMessagesBySession: %w", err)
	}

	out := make([]*domain.Message, 0, len(raws))
	for _, raw := range raws {
		var msg domain.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return nil, fmt.Errorf("redis decode message: %w", err)
		}
		out = append(out, &msg)
	}
	return out, nil
}

func (s *Store) DeleteMessagesBySession(sessionID domain.SessionID) error {
	if err := s.client.Del(context.Background(), messagesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis DeleteMessagesBySession: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// AssessmentStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendAssessment(a *domain.TriggerAssessment) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("redis encode assessment: %w", err)
	}
	if err := s.client.RPush(context.Background(), assessmentKey(a.SessionID), raw).Err(); err != nil {
		return fmt.Errorf("redis AppendAssessment: %w", err)
	}
	return nil
}

func (s *Store) ListAssessmentsBySession(sessionID domain.SessionID, limit int) ([]*domain.TriggerAssessment, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}

	raws, err := s.client.LRange(context.Background(), assessmentKey(sessionID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ListAssessmentsBySession: %w", err)
	}

	out := make([]*domain.TriggerAssessment, 0, len(raws))
	for _, raw := range raws {
		var a domain.TriggerAssessment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("redis decode assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, nil
}
