package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/havenlabs/haven-agent/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (HAVEN_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) assessmentsCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("assessments")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

// Firestore has no unsigned integers, so the tracker bitsets are stored
// as int64. The catalog caps at 64 questions but bit 63 stays unused in
// practice, so the conversion is lossless.
type sessionDocData struct {
	UserID       string    `firestore:"user_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
	LastActivity time.Time `firestore:"last_activity"`

	Phase             string `firestore:"phase"`
	PendingQuestionID string `firestore:"pending_question_id"`
	ClarifyCount      int    `firestore:"clarify_count"`
	UserTurns         int    `firestore:"user_turns"`

	TrackerAsked    int64  `firestore:"tracker_asked"`
	TrackerAnswered int64  `firestore:"tracker_answered"`
	TrackerCategory string `firestore:"tracker_category"`

	TonePermanent []toneRecordData `firestore:"tone_permanent"`
	ToneTemporary []toneRecordData `firestore:"tone_temporary"`
}

type toneRecordData struct {
	Emotion    string    `firestore:"emotion"`
	Intensity  string    `firestore:"intensity"`
	Confidence string    `firestore:"confidence"`
	At         time.Time `firestore:"at"`
}

type messageDocData struct {
	SessionID string    `firestore:"session_id"`
	Author    string    `firestore:"author"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
	Degraded  bool      `firestore:"degraded"`
	Coping    bool      `firestore:"coping"`
}

type assessmentDocData struct {
	SessionID    string    `firestore:"session_id"`
	UserID       string    `firestore:"user_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	Category     string    `firestore:"category"`
	CategoryName string    `firestore:"category_name"`
	Triggered    *bool     `firestore:"triggered"`
	Confidence   string    `firestore:"confidence"`
	Intensity    string    `firestore:"intensity"`
	Reasoning    string    `firestore:"reasoning"`
	Source       string    `firestore:"source"`
}

func toSessionDoc(session *domain.Session) sessionDocData {
	doc := sessionDocData{
		UserID:       string(session.UserID),
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		LastActivity: session.LastActivity,

		Phase:             string(session.Phase),
		PendingQuestionID: session.PendingQuestionID,
		ClarifyCount:      session.ClarifyCount,
		UserTurns:         session.UserTurns,

		TrackerAsked:    int64(session.Tracker.Asked),
		TrackerAnswered: int64(session.Tracker.Answered),
		TrackerCategory: string(session.Tracker.CurrentCategory),
	}
	doc.TonePermanent = toToneRecords(session.Tone.Permanent)
	doc.ToneTemporary = toToneRecords(session.Tone.Temporary)
	return doc
}

func fromSessionDoc(id domain.SessionID, doc sessionDocData) *domain.Session {
	return &domain.Session{
		ID:           id,
		UserID:       domain.UserID(doc.UserID),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastActivity: doc.LastActivity,

		Phase:             domain.SessionPhase(doc.Phase),
		PendingQuestionID: doc.PendingQuestionID,
		ClarifyCount:      doc.ClarifyCount,
		UserTurns:         doc.UserTurns,

		Tracker: domain.TrackerState{
			Asked:           uint64(doc.TrackerAsked),
			Answered:        uint64(doc.TrackerAnswered),
			CurrentCategory: domain.TriggerCategory(doc.TrackerCategory),
		},
		Tone: domain.ToneMemory{
			Permanent: fromToneRecords(doc.TonePermanent),
			Temporary: fromToneRecords(doc.ToneTemporary),
		},
	}
}

func toToneRecords(records []domain.ToneRecord) []toneRecordData {
	out := make([]toneRecordData, 0, len(records))
	for _, r := range records {
		out = append(out, toneRecordData{
			Emotion:    r.Emotion,
			Intensity:  string(r.Intensity),
			Confidence: string(r.Confidence),
			At:         r.At,
		})
	}
	return out
}

func fromToneRecords(records []toneRecordData) []domain.ToneRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.ToneRecord, 0, len(records))
	for _, r := range records {
		out = append(out, domain.ToneRecord{
			Emotion:    r.Emotion,
			Intensity:  domain.Intensity(r.Intensity),
			Confidence: domain.Confidence(r.Confidence),
			At:         r.At,
		})
	}
	return out
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(session *domain.Session) error {
	ctx := context.Background()

	_, err := s.sessionDoc(session.ID).Create(ctx, toSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(session *domain.Session) error {
	ctx := context.Background()

	_, err := s.sessionDoc(session.ID).Set(ctx, toSessionDoc(session))
	if err != nil {
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	ctx := context.Background()

	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDocData
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return fromSessionDoc(id, doc), nil
}

func (s *Store) DeleteSession(id domain.SessionID) error {
	ctx := context.Background()

	if _, err := s.sessionDoc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteSession: %w", err)
	}
	return nil
}

func (s *Store) ListIdleSessions(cutoff time.Time) ([]domain.SessionID, error) {
	ctx := context.Background()

	iter := s.sessionsCol().Where("last_activity", "<=", cutoff).Documents(ctx)
	defer iter.Stop()

	var ids []domain.SessionID
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListIdleSessions: %w", err)
		}
		ids = append(ids, domain.SessionID(snap.Ref.ID))
	}
	return ids, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(msg *domain.Message) error {
	ctx := context.Background()

	doc := messageDocData{
		SessionID: string(msg.SessionID),
		Author:    string(msg.Author),
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		Degraded:  msg.Degraded,
		Coping:    msg.Coping,
	}

	_, err := s.messagesCol(msg.SessionID).Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	ctx := context.Background()

	q := s.messagesCol(sessionID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDocData
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}

		out = append(out, &domain.Message{
			ID:        domain.MessageID(snap.Ref.ID),
			SessionID: sessionID,
			Author:    domain.Role(doc.Author),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
			Degraded:  doc.Degraded,
			Coping:    doc.Coping,
		})
	}
	return out, nil
}

func (s *Store) DeleteMessagesBySession(sessionID domain.SessionID) error {
	ctx := context.Background()

	iter := s.messagesCol(sessionID).Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return fmt.Errorf("firestore DeleteMessagesBySession: %w", err)
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("firestore DeleteMessagesBySession: %w", err)
		}
	}
	return nil
}

// ─────────────────────────────────────────
// AssessmentStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendAssessment(a *domain.TriggerAssessment) error {
	ctx := context.Background()

	doc := assessmentDocData{
		SessionID:    string(a.SessionID),
		UserID:       string(a.UserID),
		CreatedAt:    a.CreatedAt,
		Category:     string(a.Category),
		CategoryName: a.CategoryName,
		Triggered:    a.Triggered,
		Confidence:   string(a.Confidence),
		Intensity:    string(a.Intensity),
		Reasoning:    a.Reasoning,
		Source:       a.Source,
	}

	_, err := s.assessmentsCol(a.SessionID).Doc(string(a.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendAssessment: %w", err)
	}
	return nil
}

func (s *Store) ListAssessmentsBySession(sessionID domain.SessionID, limit int) ([]*domain.TriggerAssessment, error) {
	ctx := context.Background()

	q := s.assessmentsCol(sessionID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.TriggerAssessment
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListAssessmentsBySession: %w", err)
		}

		var doc assessmentDocData
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode assessmentDoc: %w", err)
		}

		out = append(out, &domain.TriggerAssessment{
			ID:           domain.AssessmentID(snap.Ref.ID),
			SessionID:    sessionID,
			UserID:       domain.UserID(doc.UserID),
			CreatedAt:    doc.CreatedAt,
			Category:     domain.TriggerCategory(doc.Category),
			CategoryName: doc.CategoryName,
			Triggered:    doc.Triggered,
			Confidence:   domain.Confidence(doc.Confidence),
			Intensity:    domain.Intensity(doc.Intensity),
			Reasoning:    doc.Reasoning,
			Source:       doc.Source,
		})
	}
	return out, nil
}
