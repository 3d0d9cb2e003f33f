package triggers

import "github.com/havenlabs/haven-agent/internal/domain"

// Question is one immutable assessment question. Index is the dense
// position assigned at package init; tracker bitsets are indexed by it.
type Question struct {
	ID            string
	Index         int
	Category      domain.TriggerCategory
	CategoryName  string
	Text          string
	YesIndicators []string
	NoIndicators  []string
}

// CategoryOrder is the fixed assessment sequence, identical for every
// session. NextQuestion walks it first-fit.
var CategoryOrder = []domain.TriggerCategory{
	domain.CategoryCelebratory,
	domain.CategoryEnvironmental,
	domain.CategorySocial,
	domain.CategoryEmotional,
	domain.CategoryCognitive,
	domain.CategoryPhysiological,
}

// CategoryNames maps categories to the human-readable names used in replies.
var CategoryNames = map[domain.TriggerCategory]string{
	domain.CategoryCelebratory:   "celebratory situations",
	domain.CategoryEnvironmental: "environmental triggers",
	domain.CategorySocial:        "social pressure",
	domain.CategoryEmotional:     "emotional distress",
	domain.CategoryCognitive:     "thought patterns",
	domain.CategoryPhysiological: "physical states (HALT)",
}

// questionsByCategory is the raw lexicon: per-category question lists in
// stable order. Indicators are matched as lower-case substrings.
var questionsByCategory = map[domain.TriggerCategory][]Question{
	domain.CategoryCelebratory: {
		{
			ID:   "celebratory-reward",
			Text: "When something goes really well for you, like a promotion or good news, how do you usually feel like celebrating?",
			YesIndicators: []string{
				"drink", "a toast", "party", "reward myself", "treat myself",
				"deserve", "just one", "old way",
			},
			NoIndicators: []string{
				"sober", "dinner", "call a friend", "without using",
				"don't need", "not anymore", "healthy",
			},
		},
		{
			ID:   "celebratory-occasions",
			Text: "Are there upcoming events or milestones where you worry the celebration itself could be risky for you?",
			YesIndicators: []string{
				"worried", "tempted", "risky", "open bar", "everyone will be drinking",
				"hard to say no",
			},
			NoIndicators: []string{
				"have a plan", "not worried", "feel safe", "bringing a friend",
				"fine", "good now",
			},
		},
	},
	domain.CategoryEnvironmental: {
		{
			ID:   "environmental-places",
			Text: "Have you recently been near places you associate with using, like a bar or an old neighborhood?",
			YesIndicators: []string{
				"bar", "old neighborhood", "dealer", "that house", "drove past",
				"went back", "liquor store",
			},
			NoIndicators: []string{
				"avoid", "stay away", "new route", "moved", "not anymore", "haven't been",
			},
		},
		{
			ID:   "environmental-exposure",
			Text: "Is there anything in your home or daily routine right now that reminds you of using?",
			YesIndicators: []string{
				"still have", "reminds me", "kept", "lying around", "can't get rid",
			},
			NoIndicators: []string{
				"threw out", "got rid", "cleaned", "nothing", "clean space", "fine",
			},
		},
	},
	domain.CategorySocial: {
		{
			ID:   "social-pressure",
			Text: "How are things with the people you used to use with? Do you still see them?",
			YesIndicators: []string{
				"still see", "keep calling", "pressure", "offered", "won't take no",
				"hang out with them",
			},
			NoIndicators: []string{
				"cut off", "new friends", "support group", "don't see", "blocked",
				"not anymore",
			},
		},
		{
			ID:   "social-support",
			Text: "Do you feel like the people around you support your recovery right now?",
			YesIndicators: []string{
				"no one", "alone in this", "don't understand", "make fun",
				"nobody supports",
			},
			NoIndicators: []string{
				"supportive", "my sponsor", "family helps", "good people",
				"they understand", "lucky",
			},
		},
	},
	domain.CategoryEmotional: {
		{
			ID:   "emotional-coping",
			Text: "When stress or anxiety builds up, what do you find yourself reaching for to cope?",
			YesIndicators: []string{
				"take the edge off", "numb", "escape", "only thing that helps",
				"reach for", "calm me down the old way",
			},
			NoIndicators: []string{
				"breathing", "exercise", "walk", "journal", "talk to", "meditate",
				"healthy ways",
			},
		},
		{
			ID:   "emotional-lows",
			Text: "Have you had stretches of sadness or hopelessness lately that felt hard to sit with?",
			YesIndicators: []string{
				"hopeless", "can't sit with", "unbearable", "dark place",
				"overwhelmed", "drowning",
			},
			NoIndicators: []string{
				"manageable", "passing", "better now", "getting help", "fine",
				"not anymore",
			},
		},
	},
	domain.CategoryCognitive: {
		{
			ID:   "cognitive-bargaining",
			Text: "Do thoughts like \"just once won't hurt\" or \"I can control it now\" ever cross your mind?",
			YesIndicators: []string{
				"just once", "won't hurt", "can control it", "deserve a break",
				"what's the point", "give up",
			},
			NoIndicators: []string{
				"know better", "recognize", "catch myself", "not falling for",
				"stay the course", "no",
			},
		},
		{
			ID:   "cognitive-confidence",
			Text: "How confident do you feel about your recovery when you imagine the next few months?",
			YesIndicators: []string{
				"going to fail", "pointless", "can't do this", "why bother",
				"doomed", "never works",
			},
			NoIndicators: []string{
				"confident", "one day at a time", "hopeful", "strong",
				"making progress", "good about it",
			},
		},
	},
	domain.CategoryPhysiological: {
		{
			ID:   "physiological-halt",
			Text: "Lately, have you often felt hungry, angry, lonely, or tired when cravings show up?",
			YesIndicators: []string{
				"lonely", "tired",
			},
			NoIndicators: []string{
				"not anymore", "fine", "good now",
			},
		},
		{
			ID:   "physiological-body",
			Text: "How has your sleep and appetite been? Rough nights can make everything harder.",
			YesIndicators: []string{
				"can't sleep", "exhausted", "no appetite", "barely eating",
				"restless", "run down",
			},
			NoIndicators: []string{
				"sleeping well", "eating well", "rested", "routine", "better",
				"fine",
			},
		},
	},
}

var (
	// catalog is every question in category order with dense indexes.
	catalog []Question
	byID    map[string]*Question
)

func init() {
	byID = make(map[string]*Question)
	idx := 0
	for _, cat := range CategoryOrder {
		for _, q := range questionsByCategory[cat] {
			q.Category = cat
			q.CategoryName = CategoryNames[cat]
			q.Index = idx
			catalog = append(catalog, q)
			idx++
		}
	}
	if len(catalog) > 64 {
		panic("triggers: question catalog exceeds bitset capacity")
	}
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}
}

// Catalog returns every question in assessment order.
func Catalog() []Question {
	return catalog
}

// QuestionByID looks a question up by its stable ID.
func QuestionByID(id string) (*Question, bool) {
	q, ok := byID[id]
	return q, ok
}

// QuestionCount is the catalog size.
func QuestionCount() int {
	return len(catalog)
}
