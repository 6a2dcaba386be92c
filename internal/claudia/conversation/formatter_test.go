package conversation

import (
	"testing"
	"time"

	"github.com/JackJackJ/claudia/internal/claudia/llm"
)

func TestFormatterPrefixesUserTurns(t *testing.T) {
	profiles := NewProfileStore(ProfileConfig{})
	now := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	profiles.Record("@alice:example.org", "alice", "what is Go?", now)

	f := NewFormatter(profiles)
	msgs := f.Render([]Turn{
		UserTurn("@alice:example.org", "alice", "what is Go?", now),
		AssistantTurn("A programming language.", now.Add(time.Second)),
	})

	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	want := "[User: alice, Messages: 1, First seen: 2026-02-24] what is Go?"
	if msgs[0].Role != llm.RoleUser || msgs[0].Content != want {
		t.Errorf("unexpected user message: role=%s content=%q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != llm.RoleAssistant || msgs[1].Content != "A programming language." {
		t.Errorf("expected assistant turn to pass through, got role=%s content=%q", msgs[1].Role, msgs[1].Content)
	}
}

func TestFormatterUsesLiveMessageCount(t *testing.T) {
	profiles := NewProfileStore(ProfileConfig{})
	base := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	turn := UserTurn("@alice:example.org", "alice", "first question", base)
	profiles.Record("@alice:example.org", "alice", "first question", base)
	profiles.Record("@alice:example.org", "alice", "second question", base.Add(time.Minute))
	profiles.Record("@alice:example.org", "alice", "third question", base.Add(2*time.Minute))

	f := NewFormatter(profiles)
	msgs := f.Render([]Turn{turn})

	want := "[User: alice, Messages: 3, First seen: 2026-02-24] first question"
	if msgs[0].Content != want {
		t.Errorf("expected live count in prefix, got %q", msgs[0].Content)
	}
}

func TestFormatterMissingProfileFallback(t *testing.T) {
	f := NewFormatter(NewProfileStore(ProfileConfig{}))
	now := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	msgs := f.Render([]Turn{UserTurn("@ghost:example.org", "ghost", "hello", now)})

	if msgs[0].Content != "[User: ghost] hello" {
		t.Errorf("unexpected fallback rendering: %q", msgs[0].Content)
	}
}
