// Package fallback produces supportive canned replies when the LLM
// collaborator is unavailable. Routing is keyword-based and local, so a
// degraded turn still answers in well under a millisecond.
package fallback

import (
	"math/rand"
	"strings"

	"github.com/havenlabs/haven-agent/internal/domain"
)

const (
	CategoryGeneral            = "general"
	CategoryTriggers           = "triggers"
	CategoryCrisis             = "crisis"
	CategoryEncouragement      = "encouragement"
	CategoryRelapsePrevention  = "relapse_prevention"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var responses = map[string][]string{
	CategoryGeneral: {
		"I'm here to support you in your recovery journey. Remember, you're not alone in this.",
		"Recovery is a process, and every day you choose to stay sober is a victory.",
		"It's okay to have difficult days. What matters is that you keep moving forward.",
		"You've shown incredible strength in your recovery journey so far.",
	},
	CategoryTriggers: {
		"When you feel triggered, try the 5-4-3-2-1 grounding technique: name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, 1 you can taste.",
		"Remember your coping strategies: deep breathing, calling a friend, going for a walk, or engaging in a hobby.",
		"Cravings typically last 15-20 minutes. Try to distract yourself during this time.",
		"Think about your reasons for staying sober and how far you've come.",
	},
	CategoryCrisis: {
		"If you're in immediate crisis, please call the National Drug Addiction Helpline at 1-844-289-0879.",
		"You can also text HOME to 741741 to reach the Crisis Text Line.",
		"Remember, it's okay to ask for help. You don't have to face this alone.",
		"Your life has value, and there are people who care about you and want to help.",
	},
	CategoryEncouragement: {
		"You're doing amazing work in your recovery. Every sober day is a step forward.",
		"Your strength inspires others. Keep going, one day at a time.",
		"Recovery isn't linear, and that's okay. What matters is that you keep trying.",
		"You have the power to change your life, and you're proving that every day.",
	},
	CategoryRelapsePrevention: {
		"If you're thinking about using, pause and ask yourself: 'What am I really feeling right now?'",
		"Remember your relapse prevention plan. What strategies have worked for you in the past?",
		"Reach out to your support network before making any decisions.",
		"Think about the consequences of using versus the benefits of staying sober.",
	},
}

var immediateStrategies = []string{
	"Deep breathing exercises",
	"Call a sober friend or sponsor",
	"Go for a walk or exercise",
}

// Responder implements domain.Responder with keyword routing over the
// canned response sets.
type Responder struct {
	pick func(n int) int
}

// NewResponder creates a Responder with random response selection.
func NewResponder() *Responder {
	return &Responder{pick: rand.Intn}
}

// NewSeededResponder fixes the selection for tests.
func NewSeededResponder(seed int64) *Responder {
	r := rand.New(rand.NewSource(seed))
	return &Responder{pick: r.Intn}
}

// Respond classifies the user message and returns a supportive reply.
// High-priority classifications get immediate coping strategies appended.
func (r *Responder) Respond(userMessage string) domain.FallbackReply {
	category, priority := classify(userMessage)

	pool := responses[category]
	text := pool[r.pick(len(pool))]

	if priority == PriorityHigh {
		text += "\n\nTry these coping strategies: " + strings.Join(immediateStrategies, ", ") + "."
	}

	return domain.FallbackReply{
		Text:     text,
		Category: category,
		Priority: priority,
	}
}

func classify(message string) (category, priority string) {
	lowered := strings.ToLower(message)

	contains := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("suicide", "kill myself", "end it all", "give up"):
		return CategoryCrisis, PriorityHigh
	case contains("trigger", "craving", "want to use", "urge", "tempted"):
		return CategoryTriggers, PriorityHigh
	case contains("relapse", "slipped", "fell off"):
		return CategoryRelapsePrevention, PriorityMedium
	case contains("sad", "depressed", "anxious", "stressed"):
		return CategoryEncouragement, PriorityMedium
	default:
		return CategoryGeneral, PriorityLow
	}
}
