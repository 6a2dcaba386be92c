package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/JackJackJ/claudia/common/trace"
	"github.com/JackJackJ/claudia/common/version"
	"github.com/JackJackJ/claudia/internal/claudia/conversation"
	"github.com/JackJackJ/claudia/internal/claudia/store"
)

// userInfoLogLines and userInfoLogWidth bound the recent-messages section
// of the !userinfo card.
const (
	userInfoLogLines = 5
	userInfoLogWidth = 50
)

// NameResolver resolves a user ID to a human-readable display name.
type NameResolver interface {
	DisplayName(ctx context.Context, userID id.UserID) string
}

// Handlers holds all command handlers and dependencies.
type Handlers struct {
	controller *conversation.Controller
	store      *store.Store
	resolver   NameResolver
	botName    string
}

// HandlersConfig wires the handler dependencies.
type HandlersConfig struct {
	Controller *conversation.Controller
	Store      *store.Store
	Resolver   NameResolver
	BotName    string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		controller: cfg.Controller,
		store:      cfg.Store,
		resolver:   cfg.Resolver,
		botName:    cfg.BotName,
	}
}

// HandleAsk forwards a question to the assistant and returns its answer.
func (h *Handlers) HandleAsk(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	traceID := trace.GenerateID()

	if strings.TrimSpace(cmd.Rest) == "" {
		h.audit(traceID, evt, "ask", "rejected", "empty question")
		return "Please provide a question after the !ask command.", nil
	}

	answer, err := h.controller.Ask(ctx, conversation.AskRequest{
		ChannelID: evt.RoomID.String(),
		UserID:    evt.Sender.String(),
		Username:  h.resolver.DisplayName(ctx, evt.Sender),
		Question:  cmd.Rest,
	})
	switch {
	case errors.Is(err, conversation.ErrEmptyQuestion):
		h.audit(traceID, evt, "ask", "rejected", "empty question")
		return "Please provide a question after the !ask command.", nil
	case err != nil:
		h.audit(traceID, evt, "ask", "error", err.Error())
		return fmt.Sprintf("An error occurred while processing your request: %v", err), nil
	}

	h.audit(traceID, evt, "ask", "success", "")
	return answer, nil
}

// HandleHistory shows the channel's recent conversation.
func (h *Handlers) HandleHistory(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	traceID := trace.GenerateID()

	conv, err := h.controller.History(evt.RoomID.String(), time.Time{})
	if errors.Is(err, conversation.ErrNotFound) {
		h.audit(traceID, evt, "history", "success", "empty")
		return "No conversation history found for this channel.", nil
	}
	if err != nil {
		h.audit(traceID, evt, "history", "error", err.Error())
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Conversation history (%d messages)**\n", len(conv.Turns)))
	for _, turn := range conv.Turns {
		name := h.botName
		if turn.Role == conversation.RoleUser {
			name = turn.Username
		}
		sb.WriteString(fmt.Sprintf("%s - %s: %s\n",
			turn.Timestamp.Format("2006-01-02 15:04:05"), name, turn.Content))
	}

	h.audit(traceID, evt, "history", "success", "")
	return sb.String(), nil
}

// HandleClear forgets the channel's conversation.
func (h *Handlers) HandleClear(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	traceID := trace.GenerateID()

	if err := h.controller.ClearHistory(evt.RoomID.String()); errors.Is(err, conversation.ErrNotFound) {
		h.audit(traceID, evt, "clear", "success", "empty")
		return "No conversation history found for this channel.", nil
	}

	h.audit(traceID, evt, "clear", "success", "")
	return "Conversation history cleared.", nil
}

// HandleUserInfo shows the profile card for the sender, or for the user
// named by the first argument.
func (h *Handlers) HandleUserInfo(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	traceID := trace.GenerateID()

	target := evt.Sender.String()
	if arg, ok := cmd.GetArg(0); ok {
		target = arg
	}

	profile, err := h.controller.UserInfo(target)
	if errors.Is(err, conversation.ErrNotFound) {
		h.audit(traceID, evt, "userinfo", "success", "not found")
		return fmt.Sprintf("No information found for %s", target), nil
	}
	if err != nil {
		h.audit(traceID, evt, "userinfo", "error", err.Error())
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**User information for %s**\n", profile.Username))
	sb.WriteString(fmt.Sprintf("Total messages: %d\n", profile.TotalMessages))
	sb.WriteString(fmt.Sprintf("First seen: %s\n", profile.FirstSeen.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Last active: %s\n", profile.LastInteraction.Format("2006-01-02 15:04:05")))

	log := profile.MessageLog
	if len(log) > userInfoLogLines {
		log = log[len(log)-userInfoLogLines:]
	}
	if len(log) > 0 {
		sb.WriteString("Recent messages:\n")
		for _, m := range log {
			sb.WriteString(fmt.Sprintf("• %s\n", truncate(m.Content, userInfoLogWidth)))
		}
	}

	h.audit(traceID, evt, "userinfo", "success", "")
	return sb.String(), nil
}

// HandleAudit shows recent audit entries. The optional first argument
// limits how many are shown.
func (h *Handlers) HandleAudit(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	if h.store == nil {
		return "Audit logging is not enabled.", nil
	}

	limit := 10
	if arg, ok := cmd.GetArg(0); ok {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return fmt.Sprintf("Invalid count %q; usage: !audit [n]", arg), nil
		}
		limit = n
	}

	entries, err := h.store.RecentAudit(limit)
	if err != nil {
		return "", fmt.Errorf("failed to read audit log: %w", err)
	}
	if len(entries) == 0 {
		return "No audit entries recorded yet.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Recent commands (%d)**\n", len(entries)))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %s  %s  %s (trace: %s)\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.ActorMXID, e.Action, e.Outcome, e.TraceID))
	}
	return sb.String(), nil
}

// HandleHelp shows available commands.
func (h *Handlers) HandleHelp(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	return `**Claudia**

• !ask <question> - Ask the assistant; replies use the channel's recent history
• !history - Show this channel's conversation history
• !clear - Clear this channel's conversation history
• !userinfo [user] - Show what the bot knows about a user
• !audit [n] - Show recent command audit entries
• !ping - Health check
• !version - Show version information
• !help - Show this help message
`, nil
}

// HandleVersion shows version information.
func (h *Handlers) HandleVersion(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	return fmt.Sprintf("**Claudia**\nVersion: %s\nCommit: %s\nBuild Time: %s",
		version.Version, version.GitCommit, version.BuildTime), nil
}

// HandlePing responds with a health check.
func (h *Handlers) HandlePing(ctx context.Context, cmd *Command, evt *event.Event) (string, error) {
	traceID := trace.GenerateID()
	h.audit(traceID, evt, "ping", "success", "")
	return fmt.Sprintf("🏓 Pong! (trace: %s)", traceID), nil
}

func (h *Handlers) audit(traceID string, evt *event.Event, action, outcome, detail string) {
	if h.store == nil {
		return
	}
	// Audit failures never block the reply.
	_ = h.store.WriteAudit(traceID, evt.Sender.String(), action, evt.RoomID.String(), outcome, detail)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
