package commands

import "strings"

// SplitMessage splits text into chunks of at most limit runes for outbound
// delivery. Cuts prefer the last newline inside the window so paragraphs
// stay intact; when a chunk has no newline it is cut at the rune boundary.
// Joining the chunks reproduces the input exactly.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		if idx := strings.LastIndex(string(runes[:limit]), "\n"); idx > 0 {
			// Cut after the newline so it stays with the leading chunk.
			cut = len([]rune(string(runes[:limit])[:idx])) + 1
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
