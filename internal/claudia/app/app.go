// Package app wires Claudia together: configuration, stores, the Matrix
// client, the completion service, and the command layer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maunium.net/go/mautrix/event"

	"github.com/JackJackJ/claudia/internal/claudia/commands"
	"github.com/JackJackJ/claudia/internal/claudia/config"
	"github.com/JackJackJ/claudia/internal/claudia/conversation"
	"github.com/JackJackJ/claudia/internal/claudia/llm"
	"github.com/JackJackJ/claudia/internal/claudia/matrix"
	"github.com/JackJackJ/claudia/internal/claudia/store"
)

// messageChunkLimit bounds outbound reply size; longer replies are split
// into consecutive messages.
const messageChunkLimit = 2000

// typingTimeout is how long a single typing indicator lasts; it is
// refreshed while a completion request is in flight.
const typingTimeout = 30 * time.Second

// App is the Claudia application.
type App struct {
	config     *config.Config
	store      *store.Store
	matrix     *matrix.Client
	controller *conversation.Controller
	router     *commands.Router
	health     *HealthServer
}

// New builds the application from configuration.
func New(cfg *config.Config) (*App, error) {
	slog.Info("opening database", "path", cfg.DatabasePath)
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	slog.Info("connecting to Matrix", "homeserver", cfg.Homeserver)
	matrixClient, err := matrix.New(&matrix.Config{
		Homeserver:  cfg.Homeserver,
		UserID:      cfg.UserID,
		AccessToken: cfg.AccessToken,
		Rooms:       cfg.Rooms,
		SyncStore:   matrix.NewDBSyncStore(st),
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to initialize Matrix client: %w", err)
	}

	completer := llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.RequestTimeout(),
	})
	slog.Info("completion client ready", "model", cfg.Model)

	controller := conversation.NewController(conversation.ControllerConfig{
		History: conversation.NewHistoryStore(conversation.HistoryConfig{
			MaxTurns: cfg.MaxHistoryLength,
			MaxAge:   cfg.MaxHistoryAge(),
		}),
		Profiles: conversation.NewProfileStore(conversation.ProfileConfig{
			MaxMessages: cfg.MaxUserHistory,
		}),
		Completer:    completer,
		SystemPrompt: cfg.SystemPrompt,
		Logger:       slog.Default(),
	})

	handlers := commands.NewHandlers(commands.HandlersConfig{
		Controller: controller,
		Store:      st,
		Resolver:   matrixClient,
		BotName:    cfg.BotName,
	})

	router := commands.NewRouter(cfg.CommandPrefix)
	router.Register("ask", handlers.HandleAsk)
	router.Register("history", handlers.HandleHistory)
	router.Register("clear", handlers.HandleClear)
	router.Register("userinfo", handlers.HandleUserInfo)
	router.Register("audit", handlers.HandleAudit)
	router.Register("help", handlers.HandleHelp)
	router.Register("version", handlers.HandleVersion)
	router.Register("ping", handlers.HandlePing)

	var health *HealthServer
	if cfg.HealthAddr != "" {
		health = NewHealthServer(cfg.HealthAddr, controller)
		slog.Info("health server configured", "addr", cfg.HealthAddr)
	}

	return &App{
		config:     cfg,
		store:      st,
		matrix:     matrixClient,
		controller: controller,
		router:     router,
		health:     health,
	}, nil
}

// Run starts the application and blocks until an interrupt signal.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.health != nil {
		if err := a.health.Start(ctx); err != nil {
			slog.Warn("health server failed to start; continuing without it", "err", err)
		}
	}

	slog.Info("starting Matrix sync")
	if err := a.matrix.Start(ctx, a.handleMessage); err != nil {
		return fmt.Errorf("failed to start Matrix client: %w", err)
	}

	slog.Info("Claudia is running; press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	return nil
}

// Stop stops the application.
func (a *App) Stop() {
	slog.Info("stopping Matrix client")
	a.matrix.Stop()

	if a.health != nil {
		slog.Info("stopping health server")
		a.health.Stop()
	}

	slog.Info("closing database")
	a.store.Close()
}

// handleMessage processes one incoming Matrix message.
func (a *App) handleMessage(ctx context.Context, evt *event.Event) {
	msgContent := evt.Content.AsMessage()
	if msgContent == nil {
		return
	}
	text := msgContent.Body

	cmd, err := a.router.Parse(text)
	if err != nil {
		// Ordinary chat messages are ignored silently.
		if !errors.Is(err, commands.ErrNotACommand) {
			slog.Debug("ignoring malformed command", "error", err)
		}
		return
	}

	roomID := evt.RoomID.String()

	// A completion call can take a while; show a typing indicator for it.
	if cmd.Name == "ask" {
		if err := a.matrix.SetTyping(roomID, true, typingTimeout); err != nil {
			slog.Debug("failed to set typing indicator", "room", roomID, "error", err)
		}
		defer func() {
			if err := a.matrix.SetTyping(roomID, false, 0); err != nil {
				slog.Debug("failed to clear typing indicator", "room", roomID, "error", err)
			}
		}()
	}

	response, err := a.router.Route(ctx, text, evt)
	if err != nil {
		if errors.Is(err, commands.ErrUnknownCommand) {
			a.sendReply(roomID, fmt.Sprintf("Unknown command %s%s. Type %shelp for available commands.",
				a.config.CommandPrefix, cmd.Name, a.config.CommandPrefix))
			return
		}
		slog.Error("command failed", "command", cmd.Name, "room", roomID, "error", err)
		a.sendReply(roomID, fmt.Sprintf("An error occurred while processing your request: %v", err))
		return
	}
	if response != "" {
		a.sendReply(roomID, response)
	}
}

// sendReply delivers a reply, splitting it into chunks when it exceeds
// the outbound message limit.
func (a *App) sendReply(roomID, text string) {
	for _, chunk := range commands.SplitMessage(text, messageChunkLimit) {
		if err := a.matrix.SendMessage(roomID, chunk); err != nil {
			slog.Error("failed to send reply", "room", roomID, "error", err)
			return
		}
	}
}
