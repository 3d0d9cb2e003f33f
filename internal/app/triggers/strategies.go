package triggers

import "github.com/havenlabs/haven-agent/internal/domain"

// copingStrategies maps each category to its static self-help suggestions.
// Reference data, looked up when a medium/high trigger is detected.
var copingStrategies = map[domain.TriggerCategory][]string{
	domain.CategoryCelebratory: {
		"Plan a substance-free celebration in advance: a nice dinner, a trip, or something you've wanted to buy.",
		"Share the good news with someone from your support network first.",
		"Remind yourself that the achievement came from your sober self.",
	},
	domain.CategoryEnvironmental: {
		"Change your route to avoid places you associate with using.",
		"Ask someone you trust to help you remove reminders from your home.",
		"Have an exit plan ready before entering a risky environment.",
	},
	domain.CategorySocial: {
		"Practice a short, firm refusal line you can say without explaining yourself.",
		"Bring a sober ally to gatherings where substances may be present.",
		"It's okay to leave early or decline invitations that put your recovery at risk.",
	},
	domain.CategoryEmotional: {
		"Try the 5-4-3-2-1 grounding technique: name 5 things you can see, 4 you can touch, 3 you can hear, 2 you can smell, 1 you can taste.",
		"Cravings typically pass within 15-20 minutes - ride the wave with slow breathing.",
		"Call a sober friend or your sponsor and say out loud what you're feeling.",
	},
	domain.CategoryCognitive: {
		"Play the tape forward: picture honestly where 'just once' ended last time.",
		"Write the thought down and answer it on paper like you would for a friend.",
		"Revisit your reasons for quitting - keep the list where you can see it.",
	},
	domain.CategoryPhysiological: {
		"Check HALT: are you Hungry, Angry, Lonely or Tired? Address the need directly.",
		"Eat something, drink water, or take a short nap before making any decision.",
		"A 10-minute walk can reset both your body and the craving.",
	},
}

// StrategiesFor returns the coping strategies for a category. Unknown
// categories get a small general-purpose set rather than nothing.
func StrategiesFor(category domain.TriggerCategory) []string {
	if s, ok := copingStrategies[category]; ok {
		return s
	}
	return []string{
		"Take a few slow breaths and name what you're feeling.",
		"Reach out to someone in your support network.",
		"Delay any decision about using for at least 20 minutes.",
	}
}
