package triggers

import "github.com/havenlabs/haven-agent/internal/domain"

// Tracker walks the assessment sweep for one session. It wraps the
// session-owned TrackerState; the asked and answered bitsets are indexed by
// the catalog's dense question index. A Tracker must not be shared across
// sessions, and turns of one session are serialized by the caller.
type Tracker struct {
	state *domain.TrackerState
}

// NewTracker wraps a session's tracker state.
func NewTracker(state *domain.TrackerState) *Tracker {
	return &Tracker{state: state}
}

// NextQuestion returns the first unasked question of the first category
// that still has one, marks it asked and records the current category.
// Returns nil once every question has been asked; repeated calls in that
// terminal state keep returning nil.
func (t *Tracker) NextQuestion() *Question {
	for _, cat := range CategoryOrder {
		for i := range catalog {
			q := &catalog[i]
			if q.Category != cat {
				continue
			}
			if t.state.Asked&(1<<uint(q.Index)) != 0 {
				continue
			}
			t.state.Asked |= 1 << uint(q.Index)
			t.state.CurrentCategory = cat
			return q
		}
	}
	return nil
}

// MarkAnswered records a conclusive answer. It only touches the answered
// bitset; asked and answered are independent axes.
func (t *Tracker) MarkAnswered(questionID string) {
	q, ok := QuestionByID(questionID)
	if !ok {
		return
	}
	t.state.Answered |= 1 << uint(q.Index)
}

// Asked reports whether the question was already posed this session.
func (t *Tracker) Asked(questionID string) bool {
	q, ok := QuestionByID(questionID)
	if !ok {
		return false
	}
	return t.state.Asked&(1<<uint(q.Index)) != 0
}

// Answered reports whether the question got a conclusive answer.
func (t *Tracker) Answered(questionID string) bool {
	q, ok := QuestionByID(questionID)
	if !ok {
		return false
	}
	return t.state.Answered&(1<<uint(q.Index)) != 0
}

// Exhausted reports whether every catalog question has been asked.
func (t *Tracker) Exhausted() bool {
	full := uint64(1)<<uint(len(catalog)) - 1
	return t.state.Asked&full == full
}

// Reset clears all progress. Used when a conversation is explicitly
// restarted.
func (t *Tracker) Reset() {
	t.state.Asked = 0
	t.state.Answered = 0
	t.state.CurrentCategory = ""
}
