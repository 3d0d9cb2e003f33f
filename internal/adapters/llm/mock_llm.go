package llm

import (
	"context"
	"fmt"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// MockLLM is a deterministic LLMClient for development and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Complete echoes the user message with a gentle follow-up.
func (m *MockLLM) Complete(_ context.Context, _ string, convCtx domain.ConversationContext) (string, error) {
	return fmt.Sprintf("I hear you. You said %q - tell me a bit more about how that feels.", convCtx.UserMessage), nil
}

// CompleteAnalysis returns a benign analysis so the orchestrator exercises
// the continue path in local mode.
func (m *MockLLM) CompleteAnalysis(_ context.Context, _ string, _ domain.ConversationContext) (string, error) {
	return `{"triggerDetected": false, "confidence": "low", "nextAction": "continue", "reasoning": "mock analysis"}`, nil
}
