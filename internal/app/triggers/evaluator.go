package triggers

import (
	"fmt"
	"strings"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// Evaluation is the verdict for one answer to one question. Triggered is
// nil when the indicators were mixed or absent; callers must treat nil as
// "inconclusive", not as "no trigger".
type Evaluation struct {
	Triggered    *bool                  `json:"triggered"`
	Category     domain.TriggerCategory `json:"category"`
	CategoryName string                 `json:"category_name"`
	QuestionID   string                 `json:"question_id"`
	Question     string                 `json:"question"`
	Confidence   domain.Confidence      `json:"confidence"`
	Reasoning    string                 `json:"reasoning"`
	YesMatches   []string               `json:"yes_matches,omitempty"`
	NoMatches    []string               `json:"no_matches,omitempty"`
}

// Evaluate scores one free-text answer against one question's indicator
// lists. Pure function: no side effects, never fails. Matching is
// case-insensitive substring search; empty or malformed text simply lands
// in the no-indicators branch.
func Evaluate(answer string, q Question) Evaluation {
	lowered := strings.ToLower(answer)

	yesMatches := matchIndicators(lowered, q.YesIndicators)
	noMatches := matchIndicators(lowered, q.NoIndicators)
	yesScore := len(yesMatches)
	noScore := len(noMatches)

	ev := Evaluation{
		Category:     q.Category,
		CategoryName: q.CategoryName,
		QuestionID:   q.ID,
		Question:     q.Text,
		YesMatches:   yesMatches,
		NoMatches:    noMatches,
	}

	switch {
	case yesScore >= 2 && noScore == 0:
		ev.Triggered = boolPtr(true)
		ev.Confidence = domain.ConfidenceHigh
		ev.Reasoning = fmt.Sprintf("Multiple trigger indicators found: %s", strings.Join(yesMatches, ", "))
	case yesScore >= 1 && noScore == 0:
		ev.Triggered = boolPtr(true)
		ev.Confidence = domain.ConfidenceMedium
		ev.Reasoning = fmt.Sprintf("Trigger indicator found: %s", strings.Join(yesMatches, ", "))
	case yesScore == 0 && noScore >= 1:
		ev.Triggered = boolPtr(false)
		ev.Confidence = domain.ConfidenceHigh
		ev.Reasoning = "No trigger indicators found"
	case yesScore > 0 && noScore > 0:
		ev.Confidence = domain.ConfidenceLow
		ev.Reasoning = "Mixed indicators - unclear response"
	default:
		ev.Confidence = domain.ConfidenceLow
		ev.Reasoning = "No clear indicators found"
	}

	return ev
}

func matchIndicators(lowered string, indicators []string) []string {
	var matches []string
	for _, ind := range indicators {
		if ind == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(ind)) {
			matches = append(matches, ind)
		}
	}
	return matches
}

func boolPtr(b bool) *bool {
	return &b
}
