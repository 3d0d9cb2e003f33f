package agentflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/havenlabs/haven-agent/internal/app/tools"
	"github.com/havenlabs/haven-agent/internal/app/triggers"
	"github.com/havenlabs/haven-agent/internal/domain"
)

type fakeLLM struct {
	reply       string
	replyErr    error
	analysis    string
	analysisErr error
}

func (f *fakeLLM) Complete(_ context.Context, _ string, _ domain.ConversationContext) (string, error) {
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeLLM) CompleteAnalysis(_ context.Context, _ string, _ domain.ConversationContext) (string, error) {
	if f.analysisErr != nil {
		return "", f.analysisErr
	}
	return f.analysis, nil
}

type fakeResponder struct{}

func (fakeResponder) Respond(_ string) domain.FallbackReply {
	return domain.FallbackReply{
		Text:     "I'm here to support you in your recovery journey.",
		Category: "general",
		Priority: "low",
	}
}

type recordingStore struct {
	records []*domain.TriggerAssessment
}

func (s *recordingStore) AppendAssessment(a *domain.TriggerAssessment) error {
	s.records = append(s.records, a)
	return nil
}

func (s *recordingStore) ListAssessmentsBySession(_ domain.SessionID, _ int) ([]*domain.TriggerAssessment, error) {
	return s.records, nil
}

const benignAnalysis = `{"triggerDetected": false, "confidence": "low", "nextAction": "continue"}`

func newTestOrchestrator(llmClient domain.LLMClient, store *recordingStore) *Orchestrator {
	var tool tools.Tool
	if store != nil {
		tool = tools.NewAssessmentTool(store)
	}
	return NewOrchestrator(llmClient, fakeResponder{}, tool, 3, time.Second)
}

func newTestSession() *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:           "sess-1",
		UserID:       "user-1",
		CreatedAt:    now,
		UpdatedAt:    now,
		LastActivity: now,
		Phase:        domain.PhaseIdle,
	}
}

func awaitingHALT(s *domain.Session) {
	s.Phase = domain.PhaseAwaitingAnswer
	s.PendingQuestionID = "physiological-halt"
	tr := triggers.NewTracker(&s.Tracker)
	for q := tr.NextQuestion(); q != nil && q.ID != "physiological-halt"; q = tr.NextQuestion() {
	}
}

func TestQuestionModeTriggeredAnswer(t *testing.T) {
	store := &recordingStore{}
	o := newTestOrchestrator(&fakeLLM{}, store)
	s := newTestSession()
	awaitingHALT(s)

	res := o.Run(context.Background(), "I've been so lonely and tired lately", s, domain.ConversationContext{})

	if res.Evaluation == nil || res.Evaluation.Triggered == nil || !*res.Evaluation.Triggered {
		t.Fatalf("expected triggered evaluation, got %+v", res.Evaluation)
	}
	if !strings.Contains(res.Reply, "strategies") {
		t.Fatalf("expected coping strategies in reply, got %q", res.Reply)
	}
	if s.Phase != domain.PhaseIdle || s.PendingQuestionID != "" {
		t.Fatalf("expected idle phase after conclusive answer, got %s/%s", s.Phase, s.PendingQuestionID)
	}
	if !triggers.NewTracker(&s.Tracker).Answered("physiological-halt") {
		t.Fatal("expected question marked answered")
	}
	if len(store.records) != 1 || store.records[0].Source != "question" {
		t.Fatalf("expected one recorded question assessment, got %+v", store.records)
	}
}

func TestQuestionModeClearAnswer(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{}, nil)
	s := newTestSession()
	awaitingHALT(s)

	res := o.Run(context.Background(), "no, I'm fine these days", s, domain.ConversationContext{})

	if res.Evaluation == nil || res.Evaluation.Triggered == nil || *res.Evaluation.Triggered {
		t.Fatalf("expected not-triggered evaluation, got %+v", res.Evaluation)
	}
	if !strings.Contains(res.Reply, "That's great") {
		t.Fatalf("expected encouragement, got %q", res.Reply)
	}
	if s.Phase != domain.PhaseIdle {
		t.Fatalf("expected idle phase, got %s", s.Phase)
	}
}

func TestQuestionModeInconclusiveRepromptsOnce(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysis: benignAnalysis, reply: "ok"}, nil)
	s := newTestSession()
	awaitingHALT(s)

	// First inconclusive answer: clarify, stay in question mode.
	res := o.Run(context.Background(), "I was lonely before but I'm good now", s, domain.ConversationContext{})
	if s.Phase != domain.PhaseAwaitingAnswer {
		t.Fatalf("expected to stay awaiting after first inconclusive answer, got %s", s.Phase)
	}
	if !strings.Contains(res.Reply, "understand better") {
		t.Fatalf("expected clarifying question, got %q", res.Reply)
	}

	// Second inconclusive answer: fall back to idle.
	res = o.Run(context.Background(), "lonely sometimes but mostly fine", s, domain.ConversationContext{})
	if s.Phase != domain.PhaseIdle || s.ClarifyCount != 0 {
		t.Fatalf("expected idle after second inconclusive answer, got %s clarify=%d", s.Phase, s.ClarifyCount)
	}
	if !strings.Contains(res.Reply, "come back to this") {
		t.Fatalf("expected move-on reply, got %q", res.Reply)
	}
}

func TestNormalModeDegradesWhenLLMFails(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysisErr: errors.New("deadline exceeded")}, nil)
	s := newTestSession()

	res := o.Run(context.Background(), "hello there", s, domain.ConversationContext{UserMessage: "hello there"})

	if !res.Degraded {
		t.Fatal("expected degraded turn")
	}
	if !strings.Contains(res.Reply, "support you") {
		t.Fatalf("expected fallback text, got %q", res.Reply)
	}
}

func TestNormalModeDegradesWhenChatFails(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysis: benignAnalysis, replyErr: errors.New("boom")}, nil)
	s := newTestSession()

	res := o.Run(context.Background(), "hello", s, domain.ConversationContext{UserMessage: "hello"})
	if !res.Degraded {
		t.Fatal("expected degraded turn when chat completion fails")
	}
}

func TestNormalModeSupportActionWithStrategies(t *testing.T) {
	store := &recordingStore{}
	analysis := `{"triggerDetected": true, "triggerCategory": "emotional", "triggerIntensity": "high", "confidence": "high", "nextAction": "support", "supportMessage": "That sounds heavy. You've handled hard days before."}`
	o := newTestOrchestrator(&fakeLLM{analysis: analysis}, store)
	s := newTestSession()

	res := o.Run(context.Background(), "I need something to take the edge off", s, domain.ConversationContext{})

	if res.Degraded {
		t.Fatal("unexpected degraded turn")
	}
	if !strings.HasPrefix(res.Reply, "That sounds heavy.") {
		t.Fatalf("expected verbatim support message first, got %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "grounding technique") {
		t.Fatalf("expected emotional coping strategies appended, got %q", res.Reply)
	}
	if res.Analysis == nil || res.Analysis.TriggerCategory != domain.CategoryEmotional {
		t.Fatalf("expected accepted analysis, got %+v", res.Analysis)
	}
	if len(store.records) != 1 || store.records[0].Source != "analysis" {
		t.Fatalf("expected one recorded analysis assessment, got %+v", store.records)
	}
}

func TestNormalModeLowConfidenceAnalysisIgnored(t *testing.T) {
	store := &recordingStore{}
	analysis := `{"triggerDetected": true, "triggerCategory": "social", "triggerIntensity": "high", "confidence": "low", "nextAction": "support", "supportMessage": "careful"}`
	o := newTestOrchestrator(&fakeLLM{analysis: analysis, reply: "free-form reply"}, store)
	s := newTestSession()

	res := o.Run(context.Background(), "saw some old friends", s, domain.ConversationContext{})

	if res.Analysis != nil {
		t.Fatal("low-confidence analysis must not be accepted")
	}
	if !strings.Contains(res.Reply, "free-form reply") {
		t.Fatalf("expected free-form reply, got %q", res.Reply)
	}
	if len(store.records) != 0 {
		t.Fatal("low-confidence analysis must not be recorded")
	}
}

func TestProactiveQuestionCadence(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysis: benignAnalysis, reply: "sounds good"}, nil)
	s := newTestSession()

	var res Result
	for i := 0; i < 3; i++ {
		res = o.Run(context.Background(), "just checking in", s, domain.ConversationContext{})
	}

	if s.UserTurns != 3 {
		t.Fatalf("expected 3 user turns, got %d", s.UserTurns)
	}
	if s.Phase != domain.PhaseAwaitingAnswer {
		t.Fatalf("expected question mode after third turn, got %s", s.Phase)
	}
	if s.PendingQuestionID != "celebratory-reward" {
		t.Fatalf("expected first catalog question, got %s", s.PendingQuestionID)
	}
	if !strings.Contains(res.Reply, "understand your triggers better") {
		t.Fatalf("expected proactive question appended, got %q", res.Reply)
	}
}

func TestProactiveQuestionSkippedAfterExhaustion(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysis: benignAnalysis, reply: "sounds good"}, nil)
	s := newTestSession()
	tr := triggers.NewTracker(&s.Tracker)
	for tr.NextQuestion() != nil {
	}
	s.UserTurns = 2 // next turn hits the cadence

	res := o.Run(context.Background(), "another day", s, domain.ConversationContext{})

	if s.Phase != domain.PhaseIdle {
		t.Fatalf("expected idle phase when tracker is exhausted, got %s", s.Phase)
	}
	if strings.Contains(res.Reply, "understand your triggers") {
		t.Fatalf("expected no proactive question, got %q", res.Reply)
	}
}

func TestToneFragmentPrefixesFreeFormReply(t *testing.T) {
	o := newTestOrchestrator(&fakeLLM{analysis: benignAnalysis, reply: "tell me more"}, nil)
	s := newTestSession()

	res := o.Run(context.Background(), "I'm so angry and furious, I hate this", s, domain.ConversationContext{})

	if !strings.Contains(res.Reply, "anger") {
		t.Fatalf("expected empathic tone fragment, got %q", res.Reply)
	}
	if !strings.HasSuffix(strings.TrimSpace(res.Reply), "tell me more") {
		t.Fatalf("expected LLM reply after fragment, got %q", res.Reply)
	}
}
