package memory

import (
	"sync"
	"time"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// SessionStore is a simple in-memory implementation of domain.SessionStore.
// It is NOT persistent and is only suitable for development / local mode.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
	}
}

func (s *SessionStore) CreateSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) UpdateSession(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return domain.ErrSessionNotFound
	}

	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) GetSession(id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return sess, nil
}

func (s *SessionStore) DeleteSession(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) ListIdleSessions(cutoff time.Time) ([]domain.SessionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []domain.SessionID
	for id, sess := range s.sessions {
		if !sess.LastActivity.After(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
