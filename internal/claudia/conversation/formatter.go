package conversation

import (
	"fmt"

	"github.com/JackJackJ/claudia/internal/claudia/llm"
)

// Formatter renders stored turns into the completion payload. User turns
// are prefixed with live profile context so the model always sees the
// speaker's current totals, not the totals at the time the turn was
// recorded.
type Formatter struct {
	profiles *ProfileStore
}

// NewFormatter builds a formatter reading profile context from profiles.
func NewFormatter(profiles *ProfileStore) *Formatter {
	return &Formatter{profiles: profiles}
}

// Render converts turns into completion messages in order. Assistant
// turns pass through untouched.
func (f *Formatter) Render(turns []Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case RoleUser:
			msgs = append(msgs, llm.Message{
				Role:    llm.RoleUser,
				Content: f.renderUser(t),
			})
		case RoleAssistant:
			msgs = append(msgs, llm.Message{
				Role:    llm.RoleAssistant,
				Content: t.Content,
			})
		}
	}
	return msgs
}

func (f *Formatter) renderUser(t Turn) string {
	p, ok := f.profiles.Get(t.UserID)
	if !ok {
		// No profile yet; annotate with what the turn itself carries.
		return fmt.Sprintf("[User: %s] %s", t.Username, t.Content)
	}
	return fmt.Sprintf("[User: %s, Messages: %d, First seen: %s] %s",
		t.Username, p.TotalMessages, p.FirstSeen.Format("2006-01-02"), t.Content)
}
