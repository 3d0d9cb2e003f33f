package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/havenlabs/haven-agent/internal/adapters/http"
	"github.com/havenlabs/haven-agent/internal/adapters/llm"
	"github.com/havenlabs/haven-agent/internal/adapters/storage/memory"
	"github.com/havenlabs/haven-agent/internal/app/agentflow"
	assessmentapp "github.com/havenlabs/haven-agent/internal/app/assessment"
	"github.com/havenlabs/haven-agent/internal/app/conversation"
	"github.com/havenlabs/haven-agent/internal/app/fallback"
	"github.com/havenlabs/haven-agent/internal/app/tools"
	"github.com/havenlabs/haven-agent/internal/domain"
)

type failingLLM struct{}

func (failingLLM) Complete(context.Context, string, domain.ConversationContext) (string, error) {
	return "", errors.New("llm unavailable")
}

func newTestServer(t *testing.T, llmClient domain.LLMClient) http.Handler {
	t.Helper()

	sessionStore := memory.NewSessionStore()
	messageStore := memory.NewMessageStore()
	assessmentStore := memory.NewAssessmentStore()

	orch := agentflow.NewOrchestrator(
		llmClient,
		fallback.NewSeededResponder(1),
		tools.NewAssessmentTool(assessmentStore),
		3,
		time.Second,
	)
	convSvc := conversation.NewService(sessionStore, messageStore, orch)
	assessSvc := assessmentapp.NewService(assessmentStore)

	return httpadapter.NewServer(convSvc, assessSvc)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateSessionReturnsWelcome(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	body := []byte(`{"user_id":"test-user"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Session struct {
			ID    string `json:"id"`
			Phase string `json:"phase"`
		} `json:"session"`
		Welcome *struct {
			Author string `json:"author"`
			Text   string `json:"text"`
		} `json:"welcome_message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Session.ID == "" || resp.Session.Phase != "idle" {
		t.Fatalf("unexpected session in response: %+v", resp.Session)
	}
	if resp.Welcome == nil || resp.Welcome.Author != "agent" || resp.Welcome.Text == "" {
		t.Fatalf("expected welcome message, got %+v", resp.Welcome)
	}
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{"user_id":"test-user"}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session failed: %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Session.ID
}

func TestSendMessageAndTimeline(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, srv)

	body := []byte(`{"user_id":"test-user","text":"had a rough day"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		AgentMessage struct {
			Text string `json:"text"`
		} `json:"agent_message"`
		Degraded bool `json:"degraded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AgentMessage.Text == "" {
		t.Fatal("expected non-empty agent reply")
	}
	if resp.Degraded {
		t.Fatal("mock LLM turn must not be degraded")
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var timeline struct {
		Messages []struct {
			Author string `json:"author"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &timeline); err != nil {
		t.Fatal(err)
	}
	if len(timeline.Messages) != 3 { // welcome + user + agent
		t.Fatalf("expected 3 messages, got %d", len(timeline.Messages))
	}
}

func TestSendMessageDegradesWhenLLMFails(t *testing.T) {
	srv := newTestServer(t, failingLLM{})
	id := createSession(t, srv)

	body := []byte(`{"user_id":"test-user","text":"the craving hit hard tonight"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	// LLM failure is not an HTTP failure: the client still gets a reply.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		AgentMessage struct {
			Text     string `json:"text"`
			Degraded bool   `json:"degraded"`
		} `json:"agent_message"`
		Degraded bool `json:"degraded"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Degraded || !resp.AgentMessage.Degraded {
		t.Fatalf("expected degraded turn, got %+v", resp)
	}
	if resp.AgentMessage.Text == "" {
		t.Fatal("expected fallback text")
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListAssessmentsEmpty(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())
	id := createSession(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+id+"/assessments", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Assessments []json.RawMessage `json:"assessments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Assessments) != 0 {
		t.Fatalf("expected no assessments yet, got %d", len(resp.Assessments))
	}
}

type failingAssessmentStore struct{}

func (failingAssessmentStore) AppendAssessment(*domain.TriggerAssessment) error {
	return errors.New("store down")
}

func (failingAssessmentStore) ListAssessmentsBySession(domain.SessionID, int) ([]*domain.TriggerAssessment, error) {
	return nil, errors.New("store down")
}

func TestListAssessmentsStoreFailure(t *testing.T) {
	sessionStore := memory.NewSessionStore()
	messageStore := memory.NewMessageStore()
	orch := agentflow.NewOrchestrator(
		llm.NewMockLLM(),
		fallback.NewSeededResponder(1),
		tools.NewAssessmentTool(memory.NewAssessmentStore()),
		3,
		time.Second,
	)
	convSvc := conversation.NewService(sessionStore, messageStore, orch)
	srv := httpadapter.NewServer(convSvc, assessmentapp.NewService(failingAssessmentStore{}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/sess-1/assessments", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the store fails, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] != "internal server error" {
		t.Fatalf("expected a generic error body, got %q", resp["error"])
	}
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t, llm.NewMockLLM())

	req := httptest.NewRequest(http.MethodPost, "/sessions", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", w.Code)
	}

	id := createSession(t, srv)
	req = httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", bytes.NewReader([]byte(`{"user_id":"u","text":"  "}`)))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", w.Code)
	}
}
