package memory

import (
	"sync"

	"github.com/havenlabs/haven-agent/internal/domain"
)

type AssessmentStore struct {
	mu          sync.RWMutex
	assessments map[domain.SessionID][]*domain.TriggerAssessment
}

func NewAssessmentStore() *AssessmentStore {
	return &AssessmentStore{
		assessments: make(map[domain.SessionID][]*domain.TriggerAssessment),
	}
}

func (s *AssessmentStore) AppendAssessment(a *domain.TriggerAssessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assessments[a.SessionID] = append(s.assessments[a.SessionID], a)
	return nil
}

func (s *AssessmentStore) ListAssessmentsBySession(sessionID domain.SessionID, limit int) ([]*domain.TriggerAssessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.assessments[sessionID]
	if limit > 0 && len(list) > limit {
		return list[len(list)-limit:], nil
	}
	return list, nil
}
