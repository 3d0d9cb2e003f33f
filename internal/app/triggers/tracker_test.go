package triggers

import (
	"testing"

	"github.com/havenlabs/haven-agent/internal/domain"
)

func TestNextQuestionCoversCatalogOnce(t *testing.T) {
	state := domain.TrackerState{}
	tr := NewTracker(&state)

	seen := make(map[string]bool)
	var order []domain.TriggerCategory
	for i := 0; i < QuestionCount(); i++ {
		q := tr.NextQuestion()
		if q == nil {
			t.Fatalf("expected question at position %d, got nil", i)
		}
		if seen[q.ID] {
			t.Fatalf("question %s returned twice", q.ID)
		}
		seen[q.ID] = true
		order = append(order, q.Category)
	}

	// Terminal state is idempotent.
	if q := tr.NextQuestion(); q != nil {
		t.Fatalf("expected nil after exhaustion, got %s", q.ID)
	}
	if q := tr.NextQuestion(); q != nil {
		t.Fatalf("expected nil on repeated call after exhaustion, got %s", q.ID)
	}
	if !tr.Exhausted() {
		t.Fatal("expected tracker to report exhaustion")
	}

	// A category's questions complete before the next category starts.
	rank := make(map[domain.TriggerCategory]int)
	for i, c := range CategoryOrder {
		rank[c] = i
	}
	for i := 1; i < len(order); i++ {
		if rank[order[i]] < rank[order[i-1]] {
			t.Fatalf("category order violated at position %d: %s after %s", i, order[i], order[i-1])
		}
	}
}

func TestNextQuestionWalksFirstCategoriesInOrder(t *testing.T) {
	state := domain.TrackerState{}
	tr := NewTracker(&state)

	q1 := tr.NextQuestion()
	q2 := tr.NextQuestion()
	q3 := tr.NextQuestion()

	if q1.ID != "celebratory-reward" || q2.ID != "celebratory-occasions" {
		t.Fatalf("expected both celebratory questions first, got %s, %s", q1.ID, q2.ID)
	}
	if q3.Category != domain.CategoryEnvironmental {
		t.Fatalf("expected environmental after celebratory, got %s", q3.Category)
	}
	if state.CurrentCategory != domain.CategoryEnvironmental {
		t.Fatalf("expected current category environmental, got %s", state.CurrentCategory)
	}
}

func TestMarkAnsweredDoesNotAffectNextQuestion(t *testing.T) {
	state := domain.TrackerState{}
	tr := NewTracker(&state)

	q1 := tr.NextQuestion()
	tr.MarkAnswered(q1.ID)

	if !tr.Answered(q1.ID) {
		t.Fatal("expected question to be marked answered")
	}

	q2 := tr.NextQuestion()
	if q2 == nil || q2.ID == q1.ID {
		t.Fatalf("expected a different next question, got %v", q2)
	}

	// Answering a never-asked question must not hide it from the sweep.
	state2 := domain.TrackerState{}
	tr2 := NewTracker(&state2)
	tr2.MarkAnswered("environmental-places")
	seen := false
	for q := tr2.NextQuestion(); q != nil; q = tr2.NextQuestion() {
		if q.ID == "environmental-places" {
			seen = true
		}
	}
	if !seen {
		t.Fatal("asked and answered must be independent axes")
	}
}

func TestTrackerReset(t *testing.T) {
	state := domain.TrackerState{}
	tr := NewTracker(&state)

	first := tr.NextQuestion()
	tr.MarkAnswered(first.ID)
	tr.Reset()

	if state.Asked != 0 || state.Answered != 0 || state.CurrentCategory != "" {
		t.Fatalf("expected cleared state after reset, got %+v", state)
	}
	if q := tr.NextQuestion(); q == nil || q.ID != first.ID {
		t.Fatalf("expected sweep to restart from the first question, got %v", q)
	}
}

func TestTrackerStateSurvivesReload(t *testing.T) {
	state := domain.TrackerState{}
	tr := NewTracker(&state)
	tr.NextQuestion()
	tr.NextQuestion()

	// Simulate a session loaded back from a store.
	reloaded := state
	tr2 := NewTracker(&reloaded)
	q := tr2.NextQuestion()
	if q == nil || q.Index != 2 {
		t.Fatalf("expected sweep to resume at index 2, got %+v", q)
	}
}
