package agentflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// parseAnalysis turns raw LLM output into a TriggerAnalysis. The text is
// untrusted: code fences and prose around the JSON object are tolerated,
// unparseable output is an LLM error, and parseable-but-invalid fields are
// sanitized down to a harmless "continue" analysis.
func parseAnalysis(raw string) (*domain.TriggerAnalysis, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in analysis output")
	}

	var a domain.TriggerAnalysis
	if err := json.Unmarshal([]byte(payload), &a); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}

	sanitizeAnalysis(&a)
	return &a, nil
}

// extractJSON returns the substring between the first '{' and the last
// '}', which survives markdown fences and leading prose.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

var (
	validCategories = map[domain.TriggerCategory]bool{
		domain.CategoryCelebratory:   true,
		domain.CategoryEnvironmental: true,
		domain.CategorySocial:        true,
		domain.CategoryEmotional:     true,
		domain.CategoryCognitive:     true,
		domain.CategoryPhysiological: true,
	}
	validIntensities = map[domain.Intensity]bool{
		domain.IntensityMinimal: true,
		domain.IntensityLow:     true,
		domain.IntensityMedium:  true,
		domain.IntensityHigh:    true,
	}
	validConfidences = map[domain.Confidence]bool{
		domain.ConfidenceLow:    true,
		domain.ConfidenceMedium: true,
		domain.ConfidenceHigh:   true,
	}
)

// sanitizeAnalysis enforces the variant-type contract: any field outside
// its enum collapses to the safe value, and a detection without a usable
// category degrades to a plain continue.
func sanitizeAnalysis(a *domain.TriggerAnalysis) {
	// Models sometimes emit the literal string "null".
	if string(a.TriggerCategory) == "null" {
		a.TriggerCategory = ""
	}
	if string(a.TriggerIntensity) == "null" {
		a.TriggerIntensity = ""
	}

	if a.TriggerCategory != "" && !validCategories[a.TriggerCategory] {
		a.TriggerCategory = ""
	}
	if a.TriggerIntensity != "" && !validIntensities[a.TriggerIntensity] {
		a.TriggerIntensity = ""
	}
	if !validConfidences[a.Confidence] {
		a.Confidence = domain.ConfidenceLow
	}

	switch a.NextAction {
	case domain.ActionQuestion, domain.ActionSupport, domain.ActionContinue:
	default:
		a.NextAction = domain.ActionContinue
	}

	if a.NextAction == domain.ActionSupport && a.SupportMessage == "" {
		a.NextAction = domain.ActionContinue
	}
	if a.NextAction == domain.ActionQuestion && a.SuggestedQuestion == "" {
		a.NextAction = domain.ActionContinue
	}
	if a.TriggerDetected && a.TriggerCategory == "" {
		a.TriggerDetected = false
		a.NextAction = domain.ActionContinue
	}
}
