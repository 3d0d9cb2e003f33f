package tools

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/havenlabs/haven-agent/internal/domain"
	"github.com/havenlabs/haven-agent/internal/observability"
)

// AssessmentTool persists trigger assessments so the recovery dashboard
// can show them later. The orchestrator calls it after every conclusive
// evaluation and every accepted LLM analysis.
type AssessmentTool struct {
	store domain.AssessmentStore
	now   func() time.Time
}

// NewAssessmentTool creates the tool from an AssessmentStore.
func NewAssessmentTool(store domain.AssessmentStore) *AssessmentTool {
	return &AssessmentTool{
		store: store,
		now:   time.Now,
	}
}

func (t *AssessmentTool) Name() string {
	return "record_assessment"
}

// Call writes one assessment record. Recognized input keys: category,
// category_name, triggered (*bool or bool), confidence, intensity,
// reasoning, source. Unknown keys are ignored.
func (t *AssessmentTool) Call(ctx context.Context, tctx ToolContext, input map[string]any) (map[string]any, error) {
	log := observability.LoggerFromContext(ctx).With("tool", t.Name())

	a := &domain.TriggerAssessment{
		ID:        domain.AssessmentID(uuid.NewString()),
		SessionID: domain.SessionID(tctx.SessionID),
		UserID:    domain.UserID(tctx.UserID),
		CreatedAt: t.now(),
	}

	if v, ok := input["category"].(string); ok {
		a.Category = domain.TriggerCategory(v)
	}
	if v, ok := input["category_name"].(string); ok {
		a.CategoryName = v
	}
	switch v := input["triggered"].(type) {
	case *bool:
		a.Triggered = v
	case bool:
		b := v
		a.Triggered = &b
	}
	if v, ok := input["confidence"].(string); ok {
		a.Confidence = domain.Confidence(v)
	}
	if v, ok := input["intensity"].(string); ok {
		a.Intensity = domain.Intensity(v)
	}
	if v, ok := input["reasoning"].(string); ok {
		a.Reasoning = v
	}
	if v, ok := input["source"].(string); ok {
		a.Source = v
	}

	if err := t.store.AppendAssessment(a); err != nil {
		log.Error("failed to record assessment", "error", err)
		return nil, err
	}

	log.Info("assessment recorded", "assessment_id", a.ID, "category", a.Category)
	return map[string]any{"assessment_id": string(a.ID)}, nil
}
