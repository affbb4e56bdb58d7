// Package anthropic provides a ChatModel backed by Anthropic's Claude API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/magiclab/magicprompt/model"
)

// defaultMaxTokens caps replies when the caller sets no limit; Anthropic's
// API requires an explicit max_tokens on every request.
const defaultMaxTokens = 1024

// ChatModel implements model.ChatModel for Anthropic's Messages API.
//
// Anthropic expects the system prompt as a separate request parameter, so the
// adapter extracts system messages from the conversation before sending.
//
// Example:
//
//	m := anthropic.NewChatModel(os.Getenv("ANTHROPIC_API_KEY"), "")
//	out, err := m.Chat(ctx, messages, model.Options{Temperature: 0.8})
type ChatModel struct {
	modelName string
	client    anthropicClient
}

// anthropicClient defines the interface for the underlying API operations.
// This allows for easy mocking in tests.
type anthropicClient interface {
	createMessage(ctx context.Context, systemPrompt string, messages []model.Message, opts model.Options) (model.ChatOut, error)
}

// NewChatModel creates an Anthropic ChatModel. An empty modelName selects
// a current Sonnet model.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = "claude-sonnet-4-20250514"
	}

	return &ChatModel{
		modelName: modelName,
		client:    &sdkClient{apiKey: apiKey, modelName: modelName},
	}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	systemPrompt, conversation := extractSystemPrompt(messages)
	return m.client.createMessage(ctx, systemPrompt, conversation, opts)
}

// extractSystemPrompt separates system messages from the conversation.
// Multiple system messages are concatenated.
func extractSystemPrompt(messages []model.Message) (string, []model.Message) {
	var systemPrompt string
	var conversation []model.Message

	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if systemPrompt != "" {
				systemPrompt += "\n\n"
			}
			systemPrompt += msg.Content
		} else {
			conversation = append(conversation, msg)
		}
	}

	return systemPrompt, conversation
}

// sdkClient wraps the official anthropic-sdk-go client.
type sdkClient struct {
	apiKey    string
	modelName string
}

func (c *sdkClient) createMessage(ctx context.Context, systemPrompt string, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	if c.apiKey == "" {
		return model.ChatOut{}, errors.New("anthropic API key is required")
	}

	client := anthropicsdk.NewClient(option.WithAPIKey(c.apiKey))

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(c.modelName),
		MaxTokens: int64(maxTokens),
		Messages:  convertMessages(messages),
	}
	if systemPrompt != "" {
		params.System = []anthropicsdk.TextBlockParam{{Text: systemPrompt}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = anthropicsdk.Float(opts.TopP)
	}
	if len(opts.Stop) > 0 {
		params.StopSequences = opts.Stop
	}

	message, err := client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("anthropic API error: %w", err)
	}

	return convertResponse(message), nil
}

// convertMessages converts our Message format to Anthropic's.
func convertMessages(messages []model.Message) []anthropicsdk.MessageParam {
	converted := make([]anthropicsdk.MessageParam, 0, len(messages))
	for _, msg := range messages {
		block := anthropicsdk.NewTextBlock(msg.Content)
		if msg.Role == model.RoleAssistant {
			converted = append(converted, anthropicsdk.NewAssistantMessage(block))
		} else {
			converted = append(converted, anthropicsdk.NewUserMessage(block))
		}
	}
	return converted
}

// convertResponse flattens the reply's text blocks.
func convertResponse(message *anthropicsdk.Message) model.ChatOut {
	out := model.ChatOut{}
	for _, block := range message.Content {
		if block.Type == "text" {
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += block.Text
		}
	}
	out.TokensUsed = int(message.Usage.InputTokens + message.Usage.OutputTokens)
	return out
}
