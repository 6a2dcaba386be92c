// Package llm defines the boundary between Claudia and the completion
// service. The core hands the provider a system prompt plus a bounded,
// ordered message list and expects a single text reply; everything else
// (transport, auth, model selection) lives behind the Completer interface.
package llm

import "context"

// Message roles understood by the completion service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a completion request payload.
type Message struct {
	Role    string
	Content string
}

// Completer sends a rendered conversation to the completion service and
// returns the reply text.
//
// Implementations must be safe for concurrent use from multiple goroutines.
// The call is expected to block for significant latency; callers must not
// hold store locks while it is in flight.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}
