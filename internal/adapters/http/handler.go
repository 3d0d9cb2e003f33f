package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/havenlabs/haven-agent/internal/app/assessment"
	"github.com/havenlabs/haven-agent/internal/app/conversation"
	"github.com/havenlabs/haven-agent/internal/domain"
	"github.com/havenlabs/haven-agent/internal/observability"
)

type Server struct {
	svc         *conversation.Service
	assessments *assessment.Service
}

func NewServer(svc *conversation.Service, assessments *assessment.Service) http.Handler {
	s := &Server{svc: svc, assessments: assessments}
	mux := http.NewServeMux()

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}             →  GET: session + messages, DELETE: end session
	// /sessions/{id}/messages    → POST: send message
	// /sessions/{id}/assessments →  GET: recorded trigger assessments
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	mux.HandleFunc("/healthz", s.handleHealth)

	return chainMiddlewares(mux, withCORS, withRequestID, withLogging)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sessionResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Phase        string    `json:"phase"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastActivity time.Time `json:"last_activity"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Degraded  bool      `json:"degraded,omitempty"`
}

type sendMessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type assessmentSummary struct {
	Category   string `json:"category"`
	Triggered  *bool  `json:"triggered"`
	Confidence string `json:"confidence"`
	Intensity  string `json:"intensity,omitempty"`
	Source     string `json:"source"`
}

type sendMessageResponse struct {
	UserMessage  messageResponse    `json:"user_message"`
	AgentMessage messageResponse    `json:"agent_message"`
	Degraded     bool               `json:"degraded"`
	Assessment   *assessmentSummary `json:"assessment,omitempty"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type assessmentResponse struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	Category     string    `json:"category"`
	CategoryName string    `json:"category_name"`
	Triggered    *bool     `json:"triggered"`
	Confidence   string    `json:"confidence"`
	Intensity    string    `json:"intensity,omitempty"`
	Reasoning    string    `json:"reasoning"`
	Source       string    `json:"source"`
}

type listAssessmentsResponse struct {
	Assessments []assessmentResponse `json:"assessments"`
}

type healthResponse struct {
	Status        string `json:"status"`
	TotalTurns    int64  `json:"total_turns"`
	DegradedTurns int64  `json:"degraded_turns"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}, /sessions/{id}/messages or /sessions/{id}/assessments
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, domain.SessionID(id))
		case http.MethodDelete:
			s.handleEndSession(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "messages":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			s.handleSendMessage(w, r, domain.SessionID(id))
			return
		case "assessments":
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			s.handleListAssessments(w, r, domain.SessionID(id))
			return
		}
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{
		UserID: domain.UserID(req.UserID),
	})
	if err != nil {
		internalError(w, r, err)
		return
	}

	var welcome *messageResponse
	if out.Welcome != nil {
		m := toMessageResponse(out.Welcome)
		welcome = &m
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(out.Session),
		Welcome: welcome,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, msgs, err := s.svc.GetTimeline(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID: sessionID,
		UserID:    domain.UserID(req.UserID),
		Text:      req.Text,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:  toMessageResponse(out.UserMessage),
		AgentMessage: toMessageResponse(out.AgentMessage),
		Degraded:     out.Degraded,
		Assessment:   toAssessmentSummary(out),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.svc.EndSession(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	list, err := s.assessments.GetSessionAssessments(r.Context(), id, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]assessmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAssessmentResponse(a))
	}
	writeJSON(w, http.StatusOK, listAssessmentsResponse{Assessments: out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats := s.svc.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		TotalTurns:    stats.TotalTurns,
		DegradedTurns: stats.DegradedTurns,
	})
}

// ─────────────────────────────────────────────
// Conversion Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:           string(s.ID),
		UserID:       string(s.UserID),
		Phase:        string(s.Phase),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		LastActivity: s.LastActivity,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Degraded:  m.Degraded,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func toAssessmentSummary(out *conversation.SendMessageOutput) *assessmentSummary {
	if out.Evaluation == nil {
		return nil
	}
	if ev := out.Evaluation.Evaluation; ev != nil && ev.Triggered != nil {
		return &assessmentSummary{
			Category:   string(ev.Category),
			Triggered:  ev.Triggered,
			Confidence: string(ev.Confidence),
			Source:     "question",
		}
	}
	if a := out.Evaluation.Analysis; a != nil {
		triggered := a.TriggerDetected
		return &assessmentSummary{
			Category:   string(a.TriggerCategory),
			Triggered:  &triggered,
			Confidence: string(a.Confidence),
			Intensity:  string(a.TriggerIntensity),
			Source:     "analysis",
		}
	}
	return nil
}

func toAssessmentResponse(a *domain.TriggerAssessment) assessmentResponse {
	return assessmentResponse{
		ID:           string(a.ID),
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
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"error", err,
		"path", r.URL.Path,
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
