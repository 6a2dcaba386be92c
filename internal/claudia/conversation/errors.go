package conversation

import "errors"

// Sentinel errors returned by the controller. Callers match kinds with
// errors.Is and decide how to present them; the controller never formats
// user-facing text.
var (
	// ErrNotFound reports a read against a channel or user with no
	// recorded state.
	ErrNotFound = errors.New("conversation: not found")

	// ErrEmptyQuestion reports an ask with no question text after
	// trimming whitespace.
	ErrEmptyQuestion = errors.New("conversation: empty question")

	// ErrService wraps failures from the completion service.
	ErrService = errors.New("conversation: completion service")
)
