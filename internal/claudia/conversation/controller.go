package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JackJackJ/claudia/internal/claudia/llm"
)

// Controller orchestrates a single interaction: it updates conversation
// state, renders the completion payload, and calls the completion
// service. Failures after state mutation are not rolled back, so a failed
// ask leaves the user's turn in history.
type Controller struct {
	history   *HistoryStore
	profiles  *ProfileStore
	expiry    *ExpiryPolicy
	formatter *Formatter
	completer llm.Completer

	systemPrompt string
	logger       *slog.Logger
	now          func() time.Time
}

// ControllerConfig wires a controller. History, Profiles and Completer
// are required; Now defaults to time.Now.
type ControllerConfig struct {
	History      *HistoryStore
	Profiles     *ProfileStore
	Completer    llm.Completer
	SystemPrompt string
	Logger       *slog.Logger
	Now          func() time.Time
}

// NewController builds a controller over the given stores.
func NewController(cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		history:      cfg.History,
		profiles:     cfg.Profiles,
		expiry:       NewExpiryPolicy(cfg.History, logger),
		formatter:    NewFormatter(cfg.Profiles),
		completer:    cfg.Completer,
		systemPrompt: cfg.SystemPrompt,
		logger:       logger,
		now:          now,
	}
}

// AskRequest carries one user question into the controller.
type AskRequest struct {
	ChannelID string
	UserID    string
	Username  string
	Question  string
	Now       time.Time // interaction time; zero means time.Now
}

// Ask records the question, calls the completion service against the
// channel's rendered history, records the answer and returns it.
//
// The completion call runs without any store lock held, so other
// channels (and reads on this one) proceed while it is in flight.
func (c *Controller) Ask(ctx context.Context, req AskRequest) (string, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	now := req.Now
	if now.IsZero() {
		now = c.now()
	}

	// Sweep before touching so a channel idle past the maximum age is
	// evicted and this ask starts a fresh conversation. Touching first
	// would refresh the stale channel and let its history survive.
	c.expiry.Sweep(now)
	c.history.Touch(req.ChannelID, now)

	c.profiles.Record(req.UserID, req.Username, question, now)
	c.history.Append(req.ChannelID, UserTurn(req.UserID, req.Username, question, now))

	conv, _ := c.history.Get(req.ChannelID)
	payload := c.formatter.Render(conv.Turns)

	answer, err := c.completer.Complete(ctx, c.systemPrompt, payload)
	if err != nil {
		c.logger.Error("completion failed",
			"channel", req.ChannelID, "user", req.UserID, "error", err)
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}

	answerTime := c.now()
	if answerTime.Before(now) {
		answerTime = now
	}
	c.history.Append(req.ChannelID, AssistantTurn(answer, answerTime))
	c.logger.Info("answered question",
		"channel", req.ChannelID, "user", req.UserID,
		"turns", len(conv.Turns)+1)
	return answer, nil
}

// History returns the channel's conversation snapshot, sweeping expired
// channels first so a stale channel reads as absent.
func (c *Controller) History(channelID string, now time.Time) (ChannelConversation, error) {
	if now.IsZero() {
		now = c.now()
	}
	c.expiry.Sweep(now)
	conv, ok := c.history.Get(channelID)
	if !ok || len(conv.Turns) == 0 {
		return ChannelConversation{}, ErrNotFound
	}
	return conv, nil
}

// ClearHistory forgets the channel's conversation.
func (c *Controller) ClearHistory(channelID string) error {
	if !c.history.Clear(channelID) {
		return ErrNotFound
	}
	c.logger.Info("cleared conversation", "channel", channelID)
	return nil
}

// UserInfo returns the user's profile snapshot.
func (c *Controller) UserInfo(userID string) (UserProfile, error) {
	p, ok := c.profiles.Get(userID)
	if !ok {
		return UserProfile{}, ErrNotFound
	}
	return p, nil
}

// Stats reports store sizes for health reporting.
func (c *Controller) Stats() (channels, users int) {
	return c.history.Len(), c.profiles.Len()
}
