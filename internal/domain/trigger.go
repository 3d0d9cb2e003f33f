package domain

// TriggerCategory is one of the six fixed relapse-risk themes. The set and
// its assessment order are defined at process start and never change.
type TriggerCategory string

const (
	CategoryCelebratory   TriggerCategory = "celebratory"
	CategoryEnvironmental TriggerCategory = "environmental"
	CategorySocial        TriggerCategory = "social"
	CategoryEmotional     TriggerCategory = "emotional"
	CategoryCognitive     TriggerCategory = "cognitive"
	CategoryPhysiological TriggerCategory = "physiological"
)

// NextAction is what the LLM risk analysis recommends for the next turn.
type NextAction string

const (
	ActionQuestion NextAction = "question"
	ActionSupport  NextAction = "support"
	ActionContinue NextAction = "continue"
)

// TriggerAnalysis is the structured relapse-risk assessment returned by the
// LLM collaborator. The orchestrator consumes it as untrusted input: fields
// are validated and anything malformed degrades to ActionContinue.
type TriggerAnalysis struct {
	TriggerDetected   bool            `json:"triggerDetected"`
	TriggerCategory   TriggerCategory `json:"triggerCategory,omitempty"`
	TriggerIntensity  Intensity       `json:"triggerIntensity,omitempty"`
	Confidence        Confidence      `json:"confidence"`
	Reasoning         string          `json:"reasoning,omitempty"`
	NextAction        NextAction      `json:"nextAction"`
	SuggestedQuestion string          `json:"suggestedQuestion,omitempty"`
	SupportMessage    string          `json:"supportMessage,omitempty"`
	ContextNotes      string          `json:"contextNotes,omitempty"`
}

// TriggerAssessment is the persisted record of one evaluated answer or one
// accepted LLM analysis, kept for the recovery dashboard.
type TriggerAssessment struct {
	ID        AssessmentID `json:"id"`
	SessionID SessionID    `json:"session_id"`
	UserID    UserID       `json:"user_id"`
	CreatedAt Timestamp    `json:"created_at"`

	Category     TriggerCategory `json:"category"`
	CategoryName string          `json:"category_name"`
	// Triggered is nil when the answer was inconclusive.
	Triggered  *bool      `json:"triggered"`
	Confidence Confidence `json:"confidence"`
	Intensity  Intensity  `json:"intensity,omitempty"`
	Reasoning  string     `json:"reasoning"`
	// Source is "question" for evaluator verdicts, "analysis" for LLM ones.
	Source string `json:"source"`
}
