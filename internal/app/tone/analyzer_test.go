package tone

import (
	"fmt"
	"testing"
	"time"

	"github.com/havenlabs/haven-agent/internal/domain"
)

func TestAnalyzeAngryText(t *testing.T) {
	a := AnalyzeText("I'm so angry and furious, I hate this")

	if a.PrimaryEmotion != "angry" {
		t.Fatalf("expected angry, got %s", a.PrimaryEmotion)
	}
	if a.EmotionScores["angry"] != 3 {
		t.Fatalf("expected 3 angry keyword hits, got %d", a.EmotionScores["angry"])
	}
	if a.Intensity != domain.IntensityHigh {
		t.Fatalf("expected high intensity, got %s", a.Intensity)
	}
	if a.Confidence != domain.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %s", a.Confidence)
	}
}

func TestAnalyzeNeutralText(t *testing.T) {
	a := AnalyzeText("the weather changed today")

	if a.PrimaryEmotion != "neutral" {
		t.Fatalf("expected neutral, got %s", a.PrimaryEmotion)
	}
	if a.Intensity != domain.IntensityLow {
		t.Fatalf("expected low intensity, got %s", a.Intensity)
	}
	if a.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected low confidence, got %s", a.Confidence)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := AnalyzeText("")
	if a.PrimaryEmotion != "neutral" || a.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected graceful neutral reading, got %+v", a)
	}
}

func TestAnalyzeTieBreakUsesDeclaredOrder(t *testing.T) {
	// One angry hit and one sad hit; angry comes first in declared order.
	a := AnalyzeText("mad and sad")
	if a.PrimaryEmotion != "angry" {
		t.Fatalf("expected angry on tie, got %s", a.PrimaryEmotion)
	}
}

func TestMemoryCapEvictsOldest(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		m.Add(Analysis{PrimaryEmotion: fmt.Sprintf("e%d", i)}, base.Add(time.Duration(i)*time.Minute))
	}

	if len(tm.Permanent) != 20 {
		t.Fatalf("expected 20 permanent entries, got %d", len(tm.Permanent))
	}
	if tm.Permanent[0].Emotion != "e1" {
		t.Fatalf("expected oldest entry evicted, front is %s", tm.Permanent[0].Emotion)
	}
	if tm.Permanent[19].Emotion != "e20" {
		t.Fatalf("expected newest entry kept, back is %s", tm.Permanent[19].Emotion)
	}
}

func TestTemporaryMemoryUncappedAndClearable(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)

	now := time.Now()
	for i := 0; i < 30; i++ {
		m.AddTemporary(Analysis{PrimaryEmotion: "sad"}, now)
	}
	if len(tm.Temporary) != 30 {
		t.Fatalf("expected 30 temporary entries, got %d", len(tm.Temporary))
	}

	m.ClearTemporary()
	if len(tm.Temporary) != 0 {
		t.Fatal("expected temporary memory cleared")
	}
	if m.Len(true) != 0 {
		t.Fatalf("expected empty combined memory, got %d", m.Len(true))
	}
}

func TestEmotionalTrendFloor(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)
	now := time.Now()

	m.Add(Analysis{PrimaryEmotion: "sad"}, now)
	m.Add(Analysis{PrimaryEmotion: "sad"}, now)
	if trend := m.EmotionalTrend(true); trend != nil {
		t.Fatalf("expected nil trend below the floor, got %+v", trend)
	}

	m.Add(Analysis{PrimaryEmotion: "anxious"}, now)
	trend := m.EmotionalTrend(true)
	if trend == nil {
		t.Fatal("expected a trend at 3 entries")
	}
	if trend.DominantEmotion != "sad" || trend.Frequency != 2 {
		t.Fatalf("expected sad x2, got %+v", trend)
	}
	if trend.TotalMessages != 3 {
		t.Fatalf("expected 3 total messages, got %d", trend.TotalMessages)
	}
}

func TestEmotionalTrendWindowIsRecent(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)
	now := time.Now()

	// Old sadness followed by five recent anxious readings: only the
	// window counts.
	for i := 0; i < 4; i++ {
		m.Add(Analysis{PrimaryEmotion: "sad"}, now)
	}
	for i := 0; i < 5; i++ {
		m.Add(Analysis{PrimaryEmotion: "anxious"}, now)
	}

	trend := m.EmotionalTrend(false)
	if trend == nil || trend.DominantEmotion != "anxious" || trend.Frequency != 5 {
		t.Fatalf("expected anxious x5 in window, got %+v", trend)
	}
}

func TestEmotionalTrendCombinesTemporary(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)
	now := time.Now()

	m.Add(Analysis{PrimaryEmotion: "sad"}, now)
	m.AddTemporary(Analysis{PrimaryEmotion: "sad"}, now)
	m.AddTemporary(Analysis{PrimaryEmotion: "sad"}, now)

	if trend := m.EmotionalTrend(false); trend != nil {
		t.Fatalf("expected nil trend without temporary entries, got %+v", trend)
	}
	if trend := m.EmotionalTrend(true); trend == nil || trend.Frequency != 3 {
		t.Fatalf("expected sad x3 including temporary, got %+v", trend)
	}
}

func TestEmotionalTrendWindowIsChronological(t *testing.T) {
	var tm domain.ToneMemory
	m := NewMemory(&tm)
	base := time.Now()

	// Permanent entries older than the temporary ones must not crowd the
	// newest readings out of the window just because their log is
	// concatenated first.
	for i := 0; i < 5; i++ {
		m.Add(Analysis{PrimaryEmotion: "sad"}, base.Add(time.Duration(i)*time.Minute))
	}
	for i := 0; i < 5; i++ {
		m.AddTemporary(Analysis{PrimaryEmotion: "anxious"}, base.Add(time.Duration(10+i)*time.Minute))
	}

	trend := m.EmotionalTrend(true)
	if trend == nil || trend.DominantEmotion != "anxious" || trend.Frequency != 5 {
		t.Fatalf("expected the five newest readings to win, got %+v", trend)
	}

	// Interleaved timestamps: the newest five span both logs.
	var tm2 domain.ToneMemory
	m2 := NewMemory(&tm2)
	m2.Add(Analysis{PrimaryEmotion: "sad"}, base)
	m2.AddTemporary(Analysis{PrimaryEmotion: "anxious"}, base.Add(1*time.Minute))
	m2.Add(Analysis{PrimaryEmotion: "anxious"}, base.Add(2*time.Minute))
	m2.AddTemporary(Analysis{PrimaryEmotion: "sad"}, base.Add(3*time.Minute))
	m2.Add(Analysis{PrimaryEmotion: "anxious"}, base.Add(4*time.Minute))
	m2.AddTemporary(Analysis{PrimaryEmotion: "anxious"}, base.Add(5*time.Minute))

	trend = m2.EmotionalTrend(true)
	if trend == nil || trend.DominantEmotion != "anxious" || trend.Frequency != 4 {
		t.Fatalf("expected anxious x4 across both logs, got %+v", trend)
	}
}

func TestRespondSkipsLowConfidence(t *testing.T) {
	a := Analysis{PrimaryEmotion: "sad", Intensity: domain.IntensityLow, Confidence: domain.ConfidenceLow}
	if got := Respond(a, nil); got != "" {
		t.Fatalf("expected empty response on low confidence, got %q", got)
	}
}

func TestRespondUsesEmotionAndIntensity(t *testing.T) {
	a := Analysis{PrimaryEmotion: "anxious", Intensity: domain.IntensityHigh, Confidence: domain.ConfidenceHigh}
	got := Respond(a, nil)
	if got != responseTemplates["anxious"][domain.IntensityHigh] {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestRespondAcknowledgesStrongTrend(t *testing.T) {
	a := Analysis{PrimaryEmotion: "sad", Intensity: domain.IntensityMedium, Confidence: domain.ConfidenceHigh}
	trend := &Trend{DominantEmotion: "sad", Frequency: 4, TotalMessages: 6}

	got := Respond(a, trend)
	if got == responseTemplates["sad"][domain.IntensityMedium] {
		t.Fatal("expected trend acknowledgment prefix")
	}
	if got == "" {
		t.Fatal("expected non-empty response")
	}
}
