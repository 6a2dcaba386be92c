// Package conversation implements Claudia's conversation-state and memory
// subsystem: bounded per-channel turn history, long-lived per-user profiles,
// lazy inactivity expiry, and the formatter that renders stored state into
// the payload sent to the completion service. All state is volatile: it
// lives for the life of the process and is never persisted.
package conversation

import "time"

// Turn roles. The role discriminates user turns (which carry speaker
// identity) from assistant turns (which carry only content).
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one recorded message in a channel conversation.
type Turn struct {
	Role      string    // RoleUser or RoleAssistant
	UserID    string    // set only for user turns
	Username  string    // set only for user turns
	Content   string    // message text
	Timestamp time.Time // when this turn was recorded
}

// UserTurn builds a turn spoken by a user.
func UserTurn(userID, username, content string, ts time.Time) Turn {
	return Turn{
		Role:      RoleUser,
		UserID:    userID,
		Username:  username,
		Content:   content,
		Timestamp: ts,
	}
}

// AssistantTurn builds a turn spoken by the assistant.
func AssistantTurn(content string, ts time.Time) Turn {
	return Turn{
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: ts,
	}
}
