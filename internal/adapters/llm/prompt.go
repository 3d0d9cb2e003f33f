package llm

import (
	"strings"

	"github.com/havenlabs/haven-agent/internal/domain"
)

// historyCap bounds how much conversation context accompanies a request.
const historyCap = 20

// BuildUserContent renders the capped history plus the new user message as
// a single user turn, for backends without native multi-turn support.
func BuildUserContent(convCtx domain.ConversationContext) string {
	history := convCtx.History
	if len(history) > historyCap {
		history = history[len(history)-historyCap:]
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			role := "user"
			if m.Author == domain.RoleAgent {
				role = "assistant"
			}
			b.WriteString(role + ": " + m.Text + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("New user message:\n")
	b.WriteString(convCtx.UserMessage)
	return b.String()
}
