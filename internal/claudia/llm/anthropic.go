package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 1024
	defaultTimeout   = 60 * time.Second
)

// AnthropicConfig configures the Anthropic-backed Completer.
type AnthropicConfig struct {
	// APIKey is the bearer token used to authenticate against the API.
	// Always read from the environment, never from config files or chat.
	APIKey string

	// Model is the Claude model to use. Defaults to claude-3-5-sonnet-20241022.
	Model string

	// MaxTokens caps the length of a single reply. Defaults to 1024.
	MaxTokens int

	// Timeout is the per-request HTTP timeout. Defaults to 60 s.
	Timeout time.Duration
}

// AnthropicClient implements Completer using the Anthropic Messages API.
// It is safe for concurrent use.
type AnthropicClient struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient creates a Completer backed by the Anthropic API.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &AnthropicClient{
		client:    client,
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Complete sends the rendered conversation to the Messages API and returns
// the concatenated text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	merged := mergeAlternating(messages)
	if len(merged) == 0 {
		return "", fmt.Errorf("anthropic: empty message list")
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(merged)),
	}
	for _, m := range merged {
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(m.Role),
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)},
		})
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Text: systemPrompt,
			Type: "text",
		}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: messages call: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic: empty response")
	}

	var b strings.Builder
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	return b.String(), nil
}

// mergeAlternating prepares messages for the Anthropic API, which requires
// strict user↔assistant alternation starting with a user message:
//   - consecutive same-role messages are merged into one (several users
//     speaking in a row in the same channel is the normal case, not an error)
//   - leading assistant messages are dropped; they can appear when head
//     truncation of a full history removed the user turn that preceded them
func mergeAlternating(messages []Message) []Message {
	var merged []Message
	for _, m := range messages {
		if len(merged) == 0 {
			if m.Role != RoleUser {
				continue
			}
			merged = append(merged, m)
			continue
		}
		last := &merged[len(merged)-1]
		if m.Role == last.Role {
			last.Content = last.Content + "\n\n" + m.Content
			continue
		}
		merged = append(merged, m)
	}
	return merged
}
