// Package tone scores the likely emotional content of user messages with
// lexical keyword counting, independent of trigger detection. No signal
// degrades to neutral/low rather than failing.
package tone

import (
	"fmt"
	"strings"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// emotionOrder is the declared enumeration order. Ties on the top score go
// to the earliest category in this list; keep it stable.
var emotionOrder = []string{"angry", "anxious", "sad", "happy", "hopeful"}

var emotionKeywords = map[string][]string{
	"angry": {
		"angry", "furious", "mad", "hate", "pissed", "fed up", "rage",
	},
	"anxious": {
		"anxious", "worried", "nervous", "stressed", "panic", "on edge",
		"overwhelmed",
	},
	"sad": {
		"sad", "depressed", "hopeless", "crying", "miserable", "empty",
		"worthless",
	},
	"happy": {
		"happy", "excited", "amazing", "wonderful", "proud", "grateful",
		"glad",
	},
	"hopeful": {
		"hopeful", "optimistic", "improving", "getting better", "progress",
		"looking forward",
	},
}

// voicePatterns are emphasis markers that raise the intensity reading
// without naming an emotion themselves.
var voicePatterns = []string{
	"so ", "really", "very", "extremely", "totally", "completely",
	"i can't", "i hate", "always", "never", "!!",
}

// Analysis is the tone reading for a single message.
type Analysis struct {
	PrimaryEmotion  string            `json:"primary_emotion"`
	Intensity       domain.Intensity  `json:"intensity"`
	EmotionScores   map[string]int    `json:"emotion_scores"`
	PatternAnalysis string            `json:"pattern_analysis"`
	Confidence      domain.Confidence `json:"confidence"`
}

// AnalyzeText scores text against the emotion keyword sets. The category
// with the highest non-zero count wins (first in declared order on ties);
// when nothing matches the reading is neutral. Intensity and confidence
// both derive from the combined emotion + voice-pattern hit count.
func AnalyzeText(text string) Analysis {
	lowered := strings.ToLower(text)

	scores := make(map[string]int, len(emotionOrder))
	total := 0
	for _, emotion := range emotionOrder {
		count := 0
		for _, kw := range emotionKeywords[emotion] {
			count += strings.Count(lowered, kw)
		}
		scores[emotion] = count
		total += count
	}

	primary := "neutral"
	best := 0
	for _, emotion := range emotionOrder {
		if scores[emotion] > best {
			best = scores[emotion]
			primary = emotion
		}
	}

	patternHits := 0
	var patternsSeen []string
	for _, p := range voicePatterns {
		if n := strings.Count(lowered, p); n > 0 {
			patternHits += n
			patternsSeen = append(patternsSeen, strings.TrimSpace(p))
		}
	}
	total += patternHits

	patternAnalysis := "no emphasis patterns"
	if patternHits > 0 {
		patternAnalysis = fmt.Sprintf("emphasis patterns: %s", strings.Join(patternsSeen, ", "))
	}

	return Analysis{
		PrimaryEmotion:  primary,
		Intensity:       intensityFor(total),
		EmotionScores:   scores,
		PatternAnalysis: patternAnalysis,
		Confidence:      confidenceFor(total),
	}
}

func intensityFor(total int) domain.Intensity {
	switch {
	case total >= 5:
		return domain.IntensityHigh
	case total >= 2:
		return domain.IntensityMedium
	default:
		return domain.IntensityLow
	}
}

func confidenceFor(total int) domain.Confidence {
	switch {
	case total >= 3:
		return domain.ConfidenceHigh
	case total >= 1:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
