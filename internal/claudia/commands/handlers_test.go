package commands

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/JackJackJ/claudia/internal/claudia/conversation"
	"github.com/JackJackJ/claudia/internal/claudia/llm"
	"github.com/JackJackJ/claudia/internal/claudia/store"
)

type staticResolver map[id.UserID]string

func (r staticResolver) DisplayName(_ context.Context, userID id.UserID) string {
	if name, ok := r[userID]; ok {
		return name
	}
	return userID.String()
}

type completerFunc func(ctx context.Context, system string, msgs []llm.Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, system string, msgs []llm.Message) (string, error) {
	return f(ctx, system, msgs)
}

func newTestHandlers(t *testing.T, complete completerFunc) *Handlers {
	t.Helper()
	now := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	ctrl := conversation.NewController(conversation.ControllerConfig{
		History:   conversation.NewHistoryStore(conversation.HistoryConfig{}),
		Profiles:  conversation.NewProfileStore(conversation.ProfileConfig{}),
		Completer: complete,
		Now:       func() time.Time { return now },
	})
	return NewHandlers(HandlersConfig{
		Controller: ctrl,
		Resolver:   staticResolver{"@alice:example.org": "alice"},
		BotName:    "Claudia",
	})
}

func testEvent() *event.Event {
	return &event.Event{
		RoomID: id.RoomID("!room:example.org"),
		Sender: id.UserID("@alice:example.org"),
	}
}

func TestHandleAskReturnsAnswer(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, msgs []llm.Message) (string, error) {
		if len(msgs) == 0 {
			t.Fatal("expected the rendered history in the payload")
		}
		return "Paris.", nil
	})

	reply, err := h.HandleAsk(context.Background(), &Command{Name: "ask", Rest: "capital of France?"}, testEvent())
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if reply != "Paris." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleAskEmptyQuestion(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		t.Fatal("completion must not be called")
		return "", nil
	})

	reply, err := h.HandleAsk(context.Background(), &Command{Name: "ask"}, testEvent())
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if reply != "Please provide a question after the !ask command." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleAskServiceFailure(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "", errors.New("overloaded")
	})

	reply, err := h.HandleAsk(context.Background(), &Command{Name: "ask", Rest: "anything"}, testEvent())
	if err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	if !strings.HasPrefix(reply, "An error occurred while processing your request:") {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleHistoryEmptyChannel(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "ok", nil
	})

	reply, err := h.HandleHistory(context.Background(), &Command{Name: "history"}, testEvent())
	if err != nil {
		t.Fatalf("HandleHistory failed: %v", err)
	}
	if reply != "No conversation history found for this channel." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleHistoryShowsTurns(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "Paris.", nil
	})
	ctx := context.Background()
	evt := testEvent()

	if _, err := h.HandleAsk(ctx, &Command{Name: "ask", Rest: "capital of France?"}, evt); err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}

	reply, err := h.HandleHistory(ctx, &Command{Name: "history"}, evt)
	if err != nil {
		t.Fatalf("HandleHistory failed: %v", err)
	}
	if !strings.Contains(reply, "alice: capital of France?") {
		t.Errorf("expected the user line, got %q", reply)
	}
	if !strings.Contains(reply, "Claudia: Paris.") {
		t.Errorf("expected the bot line, got %q", reply)
	}
	if !strings.Contains(reply, "2026-02-24 10:00:00") {
		t.Errorf("expected timestamps, got %q", reply)
	}
}

func TestHandleClear(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "ok", nil
	})
	ctx := context.Background()
	evt := testEvent()

	reply, err := h.HandleClear(ctx, &Command{Name: "clear"}, evt)
	if err != nil {
		t.Fatalf("HandleClear failed: %v", err)
	}
	if reply != "No conversation history found for this channel." {
		t.Errorf("unexpected reply for an empty channel: %q", reply)
	}

	if _, err := h.HandleAsk(ctx, &Command{Name: "ask", Rest: "hello"}, evt); err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}
	reply, err = h.HandleClear(ctx, &Command{Name: "clear"}, evt)
	if err != nil {
		t.Fatalf("HandleClear failed: %v", err)
	}
	if reply != "Conversation history cleared." {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestHandleUserInfo(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "ok", nil
	})
	ctx := context.Background()
	evt := testEvent()

	reply, err := h.HandleUserInfo(ctx, &Command{Name: "userinfo"}, evt)
	if err != nil {
		t.Fatalf("HandleUserInfo failed: %v", err)
	}
	if reply != "No information found for @alice:example.org" {
		t.Errorf("unexpected reply for an unknown user: %q", reply)
	}

	longQuestion := strings.Repeat("why? ", 30)
	if _, err := h.HandleAsk(ctx, &Command{Name: "ask", Rest: longQuestion}, evt); err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}

	reply, err = h.HandleUserInfo(ctx, &Command{Name: "userinfo"}, evt)
	if err != nil {
		t.Fatalf("HandleUserInfo failed: %v", err)
	}
	if !strings.Contains(reply, "User information for alice") {
		t.Errorf("expected the profile header, got %q", reply)
	}
	if !strings.Contains(reply, "Total messages: 1") {
		t.Errorf("expected the message total, got %q", reply)
	}
	if !strings.Contains(reply, "...") {
		t.Errorf("expected long recent messages to be truncated, got %q", reply)
	}
}

func TestHandleAudit(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "ok", nil
	})
	st, err := store.New(filepath.Join(t.TempDir(), "claudia.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	h.store = st

	ctx := context.Background()
	evt := testEvent()

	reply, err := h.HandleAudit(ctx, &Command{Name: "audit"}, evt)
	if err != nil {
		t.Fatalf("HandleAudit failed: %v", err)
	}
	if reply != "No audit entries recorded yet." {
		t.Errorf("unexpected reply with an empty log: %q", reply)
	}

	if _, err := h.HandleAsk(ctx, &Command{Name: "ask", Rest: "hello"}, evt); err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}

	reply, err = h.HandleAudit(ctx, &Command{Name: "audit"}, evt)
	if err != nil {
		t.Fatalf("HandleAudit failed: %v", err)
	}
	if !strings.Contains(reply, "@alice:example.org") || !strings.Contains(reply, "ask") {
		t.Errorf("expected the ask to be audited, got %q", reply)
	}

	reply, err = h.HandleAudit(ctx, &Command{Name: "audit", Args: []string{"nope"}}, evt)
	if err != nil {
		t.Fatalf("HandleAudit failed: %v", err)
	}
	if !strings.Contains(reply, "usage: !audit") {
		t.Errorf("expected a usage hint for a bad count, got %q", reply)
	}
}

func TestHandleUserInfoByArgument(t *testing.T) {
	h := newTestHandlers(t, func(_ context.Context, _ string, _ []llm.Message) (string, error) {
		return "ok", nil
	})
	ctx := context.Background()

	if _, err := h.HandleAsk(ctx, &Command{Name: "ask", Rest: "hello"}, testEvent()); err != nil {
		t.Fatalf("HandleAsk failed: %v", err)
	}

	bob := &event.Event{
		RoomID: id.RoomID("!room:example.org"),
		Sender: id.UserID("@bob:example.org"),
	}
	cmd := &Command{Name: "userinfo", Args: []string{"@alice:example.org"}, Rest: "@alice:example.org"}
	reply, err := h.HandleUserInfo(ctx, cmd, bob)
	if err != nil {
		t.Fatalf("HandleUserInfo failed: %v", err)
	}
	if !strings.Contains(reply, "User information for alice") {
		t.Errorf("expected alice's profile, got %q", reply)
	}
}
