// Package openai provides a ChatModel backed by the OpenAI API or any
// OpenAI-compatible server.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/magiclab/magicprompt/model"
)

// ChatModel implements model.ChatModel for the OpenAI chat completions API.
//
// Because the base URL is configurable, the same adapter fronts any server
// speaking the OpenAI wire format (Ollama, llama.cpp, vLLM), which is how
// the chat loop reaches a local model:
//
//	m := openai.NewChatModel("", "mistral",
//	    openai.WithBaseURL("http://localhost:11434/v1"))
//
// Transient errors (network issues, rate limits, 5xx) are retried with
// backoff; other errors return immediately.
type ChatModel struct {
	modelName  string
	client     openaiClient
	maxRetries int
	retryDelay time.Duration
}

// openaiClient defines the interface for the underlying API operations.
// This allows for easy mocking in tests.
type openaiClient interface {
	createChatCompletion(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error)
}

// Option configures a ChatModel.
type Option func(*config)

type config struct {
	baseURL string
}

// WithBaseURL points the client at an OpenAI-compatible server instead of
// api.openai.com, e.g. "http://localhost:11434/v1" for a local Ollama.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// NewChatModel creates an OpenAI ChatModel.
//
// apiKey may be empty when targeting a local server that ignores
// authentication. An empty modelName selects "gpt-4o-mini".
//
// The returned model retries transient errors up to 3 times with a one
// second base delay and linear backoff for rate limits.
func NewChatModel(apiKey, modelName string, opts ...Option) *ChatModel {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	return &ChatModel{
		modelName:  modelName,
		client:     newSDKClient(apiKey, modelName, cfg.baseURL),
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		out, err := m.client.createChatCompletion(ctx, messages, opts)
		if err == nil {
			return out, nil
		}

		lastErr = err

		if !isTransientError(err) {
			return model.ChatOut{}, err
		}
		if attempt >= m.maxRetries {
			break
		}

		// Linear backoff for rate limits, flat delay otherwise
		delay := m.retryDelay
		if isRateLimitError(err) {
			delay = m.retryDelay * time.Duration(attempt+1)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return model.ChatOut{}, ctx.Err()
		}
	}

	return model.ChatOut{}, fmt.Errorf("OpenAI API failed after %d retries: %w", m.maxRetries, lastErr)
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if isRateLimitError(err) {
		return true
	}

	msgLower := strings.ToLower(err.Error())
	transientPatterns := []string{
		"timeout",
		"network",
		"connection",
		"temporary",
		"503",
		"502",
		"500",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(msgLower, pattern) {
			return true
		}
	}
	return false
}

func isRateLimitError(err error) bool {
	var rateLimitErr *rateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "429")
}

// rateLimitError marks an error as a rate limit for backoff purposes.
type rateLimitError struct {
	message string
}

func (e *rateLimitError) Error() string {
	return "rate limit: " + e.message
}

// sdkClient wraps the official openai-go SDK.
type sdkClient struct {
	client    openai.Client
	modelName string
}

func newSDKClient(apiKey, modelName, baseURL string) *sdkClient {
	reqOpts := []option.RequestOption{}
	if apiKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}

	return &sdkClient{
		client:    openai.NewClient(reqOpts...),
		modelName: modelName,
	}
}

func (c *sdkClient) createChatCompletion(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.modelName),
		Messages: convertMessages(messages),
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if len(opts.Stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{
			OfStringArray: opts.Stop,
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return model.ChatOut{}, errors.New("no response from OpenAI API")
	}

	return model.ChatOut{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}

// convertMessages converts our Message format to the SDK's parameter unions.
func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			converted = append(converted, openai.AssistantMessage(msg.Content))
		default:
			converted = append(converted, openai.UserMessage(msg.Content))
		}
	}
	return converted
}
