// Package model provides LLM chat adapters for the console chat loop.
package model

import "context"

// ChatModel defines the interface for LLM chat providers.
//
// It abstracts the differences between providers (an OpenAI-compatible local
// server, Anthropic, Google) behind a single synchronous call.
//
// Implementations should:
// - Handle provider-specific authentication and message formats.
// - Respect context cancellation and timeouts.
// - Map opts onto the provider's sampling parameters, ignoring what the
//   provider does not support.
//
// Example:
//
//	m := openai.NewChatModel("", "mistral",
//	    openai.WithBaseURL("http://localhost:11434/v1"))
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleSystem, Content: "Responses should be short and clear."},
//	    {Role: model.RoleUser, Content: "What is aperture?"},
//	}, model.Options{Temperature: 0.8, TopP: 0.7})
type ChatModel interface {
	// Chat sends the conversation to the LLM and returns its reply.
	Chat(ctx context.Context, messages []Message, opts Options) (ChatOut, error)
}

// Message represents a single message in an LLM conversation.
//
// Typical structure: an optional system message first, then alternating user
// and assistant messages.
type Message struct {
	// Role identifies the sender: "system", "user", or "assistant".
	// Use the Role* constants.
	Role string

	// Content is the message text.
	Content string
}

// Standard role constants, aligned with the conventions of the major
// providers.
const (
	// RoleSystem sets context or behavior; appears first when present.
	RoleSystem = "system"

	// RoleUser is input from the human.
	RoleUser = "user"

	// RoleAssistant is a prior LLM response.
	RoleAssistant = "assistant"
)

// Options carries generation parameters for a chat call.
//
// Zero values mean "provider default": a field is only forwarded when set.
type Options struct {
	// Temperature controls sampling randomness. Forwarded when > 0.
	Temperature float64

	// TopP is the nucleus sampling threshold. Forwarded when > 0.
	TopP float64

	// MaxTokens caps the reply length. Forwarded when > 0. Providers that
	// require a cap (Anthropic) substitute their own default when unset.
	MaxTokens int

	// Stop lists sequences that end generation, e.g. chat template markers
	// a local model might leak.
	Stop []string
}

// ChatOut represents the output of a chat completion.
type ChatOut struct {
	// Text is the LLM's reply.
	Text string

	// TokensUsed is the total token count the provider reported for the
	// call, zero when unavailable.
	TokensUsed int
}
