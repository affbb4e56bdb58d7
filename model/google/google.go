// Package google provides a ChatModel backed by Google's Gemini API.
package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/magiclab/magicprompt/model"
)

// ChatModel implements model.ChatModel for Google's Gemini API.
//
// Gemini handles the system prompt as a model-level system instruction and
// can block replies via safety filters; blocked content surfaces as a
// SafetyFilterError:
//
//	out, err := m.Chat(ctx, messages, model.Options{})
//	var safetyErr *google.SafetyFilterError
//	if errors.As(err, &safetyErr) {
//	    log.Printf("content blocked: %s", safetyErr.Category())
//	}
type ChatModel struct {
	modelName string
	client    googleClient
}

// googleClient defines the interface for the underlying API operations.
// This allows for easy mocking in tests.
type googleClient interface {
	generateContent(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error)
}

// NewChatModel creates a Google ChatModel. An empty modelName selects
// "gemini-2.5-flash".
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = "gemini-2.5-flash"
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
	return m.client.generateContent(ctx, messages, opts)
}

// sdkClient wraps the official generative-ai-go client.
type sdkClient struct {
	apiKey    string
	modelName string
}

func (c *sdkClient) generateContent(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	if c.apiKey == "" {
		return model.ChatOut{}, errors.New("google API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("failed to create Google client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	genModel := client.GenerativeModel(c.modelName)
	if opts.Temperature > 0 {
		genModel.SetTemperature(float32(opts.Temperature))
	}
	if opts.TopP > 0 {
		genModel.SetTopP(float32(opts.TopP))
	}
	if opts.MaxTokens > 0 {
		genModel.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if len(opts.Stop) > 0 {
		genModel.StopSequences = opts.Stop
	}

	system, conversation := extractSystemInstruction(messages)
	if system != "" {
		genModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	resp, err := genModel.GenerateContent(ctx, convertMessages(conversation)...)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("google API error: %w", err)
	}

	return convertResponse(resp)
}

// extractSystemInstruction separates system messages from the conversation;
// Gemini takes them as a model-level instruction rather than chat turns.
func extractSystemInstruction(messages []model.Message) (string, []model.Message) {
	var system string
	var conversation []model.Message

	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
		} else {
			conversation = append(conversation, msg)
		}
	}

	return system, conversation
}

// convertMessages converts the conversation to Gemini content parts.
func convertMessages(messages []model.Message) []genai.Part {
	var parts []genai.Part
	for _, msg := range messages {
		if msg.Content != "" {
			parts = append(parts, genai.Text(msg.Content))
		}
	}
	return parts
}

// convertResponse extracts reply text, mapping safety blocks to
// SafetyFilterError.
func convertResponse(resp *genai.GenerateContentResponse) (model.ChatOut, error) {
	out := model.ChatOut{}

	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return out, &SafetyFilterError{
				reason: resp.PromptFeedback.BlockReason.String(),
			}
		}
		return out, nil
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		category := ""
		for _, rating := range candidate.SafetyRatings {
			if rating.Blocked {
				category = rating.Category.String()
				break
			}
		}
		return out, &SafetyFilterError{reason: "SAFETY", category: category}
	}

	if candidate.Content == nil {
		return out, nil
	}
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += string(text)
		}
	}

	return out, nil
}

// SafetyFilterError represents a Gemini safety filter block.
//
// Check for it with errors.As:
//
//	var safetyErr *google.SafetyFilterError
//	if errors.As(err, &safetyErr) {
//	    log.Printf("content blocked: %s", safetyErr.Category())
//	}
type SafetyFilterError struct {
	reason   string
	category string
}

// Error implements the error interface.
func (e *SafetyFilterError) Error() string {
	if e.category != "" {
		return "content blocked by safety filter: " + e.category
	}
	return "content blocked by safety filter: " + e.reason
}

// Category returns the safety category that triggered the block.
func (e *SafetyFilterError) Category() string {
	return e.category
}

// Reason returns why the content was blocked.
func (e *SafetyFilterError) Reason() string {
	return e.reason
}
