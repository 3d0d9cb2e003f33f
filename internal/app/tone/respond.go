package tone

import (
	"fmt"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// responseTemplates keys an empathic reply fragment by primary emotion and
// intensity. Emotions without a high-intensity entry fall back to their
// base template.
var responseTemplates = map[string]map[domain.Intensity]string{
	"angry": {
		domain.IntensityHigh:   "I can hear how much anger is in this, and that's a lot to carry.",
		domain.IntensityMedium: "It sounds like there's some real frustration here.",
		domain.IntensityLow:    "I'm picking up a bit of frustration.",
	},
	"anxious": {
		domain.IntensityHigh:   "That sounds overwhelming - your worry is coming through clearly.",
		domain.IntensityMedium: "It sounds like there's some anxiety weighing on you.",
		domain.IntensityLow:    "I sense a little worry in what you're sharing.",
	},
	"sad": {
		domain.IntensityHigh:   "I'm really sorry things feel this heavy right now.",
		domain.IntensityMedium: "It sounds like you're carrying some sadness.",
		domain.IntensityLow:    "There's a quiet sadness in what you wrote.",
	},
	"happy": {
		domain.IntensityHigh:   "I love the energy in this - that's wonderful to hear!",
		domain.IntensityMedium: "It's good to hear some brightness from you.",
		domain.IntensityLow:    "There's a positive note in what you're sharing.",
	},
	"hopeful": {
		domain.IntensityHigh:   "The hope in your words really stands out - hold on to that.",
		domain.IntensityMedium: "It sounds like you're seeing a way forward.",
		domain.IntensityLow:    "I hear a little optimism in there.",
	},
}

// trendAcknowledgment is prefixed when a trend is strong enough to mention.
const trendFrequencyFloor = 3

// Respond returns an empathic fragment for the reading, or "" when the
// signal is too weak to comment on. A strong recent trend earns an
// acknowledgment sentence in front.
func Respond(a Analysis, trend *Trend) string {
	if a.Confidence == domain.ConfidenceLow {
		return ""
	}

	byIntensity, ok := responseTemplates[a.PrimaryEmotion]
	if !ok {
		return ""
	}
	fragment, ok := byIntensity[a.Intensity]
	if !ok {
		fragment = byIntensity[domain.IntensityLow]
	}
	if fragment == "" {
		return ""
	}

	if trend != nil && trend.Frequency >= trendFrequencyFloor && trend.DominantEmotion == a.PrimaryEmotion {
		return fmt.Sprintf("I've noticed you've been feeling %s through our last few messages. %s",
			trend.DominantEmotion, fragment)
	}
	return fragment
}
