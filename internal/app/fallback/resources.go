package fallback

// Hotline is an emergency phone or text line.
type Hotline struct {
	Name   string `json:"name"`
	Number string `json:"number,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Website is a recovery resource site.
type Website struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Resources bundles the emergency contacts surfaced alongside crisis
// replies.
type Resources struct {
	Hotlines []Hotline `json:"hotlines"`
	Websites []Website `json:"websites"`
}

var emergencyResources = Resources{
	Hotlines: []Hotline{
		{Name: "National Drug Addiction Helpline", Number: "1-844-289-0879"},
		{Name: "Crisis Text Line", Text: "HOME to 741741"},
		{Name: "SAMHSA National Helpline", Number: "1-800-662-HELP (4357)"},
	},
	Websites: []Website{
		{Name: "SAMHSA", URL: "https://www.samhsa.gov"},
		{Name: "NA (Narcotics Anonymous)", URL: "https://www.na.org"},
		{Name: "AA (Alcoholics Anonymous)", URL: "https://www.aa.org"},
	},
}

// EmergencyResources returns the static emergency resource table.
func EmergencyResources() Resources {
	return emergencyResources
}

// NeedsImmediateAttention reports whether the message classifies as
// high priority.
func NeedsImmediateAttention(message string) bool {
	_, priority := classify(message)
	return priority == PriorityHigh
}
