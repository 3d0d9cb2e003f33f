package tone

import (
	"sort"
	"time"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// maxPermanentEntries bounds the permanent tone log; insertion evicts the
// oldest entry first.
const maxPermanentEntries = 20

// trendWindow and trendFloor shape the emotional-trend computation: at
// least trendFloor combined entries are required, and only the last
// trendWindow entries are considered.
const (
	trendWindow = 5
	trendFloor  = 3
)

// Memory wraps one session's tone memory. It must never be shared across
// sessions; the turn service serializes access per session.
type Memory struct {
	mem *domain.ToneMemory
}

// NewMemory wraps a session-owned tone memory.
func NewMemory(mem *domain.ToneMemory) *Memory {
	return &Memory{mem: mem}
}

// Add appends a reading to the permanent log, evicting the oldest entry
// beyond the cap.
func (m *Memory) Add(a Analysis, at time.Time) {
	m.mem.Permanent = append(m.mem.Permanent, record(a, at))
	if len(m.mem.Permanent) > maxPermanentEntries {
		m.mem.Permanent = m.mem.Permanent[len(m.mem.Permanent)-maxPermanentEntries:]
	}
}

// AddTemporary appends a reading to the temporary log. Temporary entries
// are uncapped but must never survive the session; ClearTemporary runs at
// session end.
func (m *Memory) AddTemporary(a Analysis, at time.Time) {
	m.mem.Temporary = append(m.mem.Temporary, record(a, at))
}

// ClearTemporary drops the temporary log.
func (m *Memory) ClearTemporary() {
	m.mem.Temporary = nil
}

// Len returns the combined entry count.
func (m *Memory) Len(includeTemporary bool) int {
	n := len(m.mem.Permanent)
	if includeTemporary {
		n += len(m.mem.Temporary)
	}
	return n
}

// Trend summarizes the dominant emotion over the recent memory window.
type Trend struct {
	DominantEmotion string `json:"dominant_emotion"`
	Frequency       int    `json:"frequency"`
	TotalMessages   int    `json:"total_messages"`
}

// EmotionalTrend returns the most frequent primary emotion among the last
// few remembered readings, or nil below the entry floor. Callers must not
// render a trend when nil comes back.
func (m *Memory) EmotionalTrend(includeTemporary bool) *Trend {
	combined := make([]domain.ToneRecord, 0, m.Len(includeTemporary))
	combined = append(combined, m.mem.Permanent...)
	if includeTemporary {
		combined = append(combined, m.mem.Temporary...)
	}
	if len(combined) < trendFloor {
		return nil
	}

	// Both logs are appended independently, so the concatenation is not in
	// reading order. The window must hold the newest readings overall.
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].At.Before(combined[j].At)
	})

	window := combined
	if len(window) > trendWindow {
		window = window[len(window)-trendWindow:]
	}

	counts := make(map[string]int)
	for _, r := range window {
		counts[r.Emotion]++
	}

	dominant := ""
	freq := 0
	for _, r := range window {
		if counts[r.Emotion] > freq {
			freq = counts[r.Emotion]
			dominant = r.Emotion
		}
	}

	return &Trend{
		DominantEmotion: dominant,
		Frequency:       freq,
		TotalMessages:   len(combined),
	}
}

func record(a Analysis, at time.Time) domain.ToneRecord {
	return domain.ToneRecord{
		Emotion:    a.PrimaryEmotion,
		Intensity:  a.Intensity,
		Confidence: a.Confidence,
		At:         at,
	}
}
