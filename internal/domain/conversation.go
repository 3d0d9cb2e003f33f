package domain

// Message is any message in a session timeline (user or agent).
type Message struct {
	ID        MessageID `json:"id"`
	SessionID SessionID `json:"session_id"`
	Author    Role      `json:"author"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`

	// Degraded marks agent replies produced by the fallback responder
	// because the LLM collaborator was unavailable.
	Degraded bool `json:"degraded,omitempty"`
	// Coping marks appended coping-strategy blocks.
	Coping bool `json:"coping,omitempty"`
}

// TrackerState is the question tracker's progress, stored as bitsets over
// the dense question index assigned at startup. It is owned by the Session
// and mutated only through the triggers.Tracker operations.
type TrackerState struct {
	Asked           uint64          `json:"asked"`
	Answered        uint64          `json:"answered"`
	CurrentCategory TriggerCategory `json:"current_category,omitempty"`
}

// ToneRecord is one remembered tone reading.
type ToneRecord struct {
	Emotion    string     `json:"emotion"`
	Intensity  Intensity  `json:"intensity"`
	Confidence Confidence `json:"confidence"`
	At         Timestamp  `json:"at"`
}

// ToneMemory is the per-session emotional memory. Permanent entries are
// capped (FIFO) and survive across turns; temporary entries are uncapped
// but die with the session.
type ToneMemory struct {
	Permanent []ToneRecord `json:"permanent,omitempty"`
	Temporary []ToneRecord `json:"temporary,omitempty"`
}

// Session is one client's conversation with the companion. It owns the
// question tracker, the tone memory and the question-mode state, and is
// kept flat so any store can serialize it as-is.
type Session struct {
	ID        SessionID `json:"id"`
	UserID    UserID    `json:"user_id"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
	// LastActivity drives idle eviction; refreshed on every access.
	LastActivity Timestamp `json:"last_activity"`

	Phase SessionPhase `json:"phase"`
	// PendingQuestionID is set while Phase is PhaseAwaitingAnswer.
	PendingQuestionID string `json:"pending_question_id,omitempty"`
	// ClarifyCount counts consecutive inconclusive answers to the pending
	// question; after one re-prompt the session falls back to idle.
	ClarifyCount int `json:"clarify_count,omitempty"`

	// UserTurns counts user messages, driving the proactive question cadence.
	UserTurns int `json:"user_turns"`

	Tracker TrackerState `json:"tracker"`
	Tone    ToneMemory   `json:"tone"`
}
