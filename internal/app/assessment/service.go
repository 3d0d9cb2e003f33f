package assessment

import (
	"context"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// Service holds the logic of reading recorded trigger assessments
type Service struct {
	store domain.AssessmentStore
}

// NewService creates an assessment service from an AssessmentStore
func NewService(store domain.AssessmentStore) *Service {
	return &Service{
		store: store,
	}
}

// GetSessionAssessments returns the last `limit` assessments for a session.
// If limit <= 0, a reasonable default value is used.
func (s *Service) GetSessionAssessments(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) ([]*domain.TriggerAssessment, error) {

	if s.store == nil {
		// Assessment persistence is optional; without a store the
		// dashboard simply shows nothing.
		return []*domain.TriggerAssessment{}, nil
	}

	if limit <= 0 {
		limit = 20
	}

	return s.store.ListAssessmentsBySession(sessionID, limit)
}
