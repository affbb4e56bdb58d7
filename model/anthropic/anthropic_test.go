package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/magiclab/magicprompt/model"
)

type fakeClient struct {
	systemPrompt string
	messages     []model.Message
	opts         model.Options
	out          model.ChatOut
	err          error
}

func (f *fakeClient) createMessage(ctx context.Context, systemPrompt string, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	f.systemPrompt = systemPrompt
	f.messages = messages
	f.opts = opts
	return f.out, f.err
}

func TestChatModel_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("system messages become the system parameter", func(t *testing.T) {
		client := &fakeClient{out: model.ChatOut{Text: "ok", TokensUsed: 12}}
		m := &ChatModel{modelName: "test", client: client}

		out, err := m.Chat(ctx, []model.Message{
			{Role: model.RoleSystem, Content: "be brief"},
			{Role: model.RoleUser, Content: "hi"},
		}, model.Options{Temperature: 0.8})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if out.Text != "ok" || out.TokensUsed != 12 {
			t.Errorf("unexpected output: %+v", out)
		}
		if client.systemPrompt != "be brief" {
			t.Errorf("expected system prompt extraction, got %q", client.systemPrompt)
		}
		if len(client.messages) != 1 || client.messages[0].Role != model.RoleUser {
			t.Errorf("conversation should exclude system messages: %+v", client.messages)
		}
		if client.opts.Temperature != 0.8 {
			t.Errorf("options not forwarded: %+v", client.opts)
		}
	})

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		client := &fakeClient{}
		m := &ChatModel{modelName: "test", client: client}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := m.Chat(cancelled, []model.Message{{Role: model.RoleUser, Content: "hi"}}, model.Options{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestExtractSystemPrompt(t *testing.T) {
	t.Run("concatenates multiple system messages", func(t *testing.T) {
		system, conversation := extractSystemPrompt([]model.Message{
			{Role: model.RoleSystem, Content: "one"},
			{Role: model.RoleUser, Content: "hi"},
			{Role: model.RoleSystem, Content: "two"},
			{Role: model.RoleAssistant, Content: "hello"},
		})

		if system != "one\n\ntwo" {
			t.Errorf("expected concatenated system prompt, got %q", system)
		}
		if len(conversation) != 2 {
			t.Fatalf("expected 2 conversation messages, got %d", len(conversation))
		}
		if conversation[0].Role != model.RoleUser || conversation[1].Role != model.RoleAssistant {
			t.Errorf("unexpected conversation: %+v", conversation)
		}
	})

	t.Run("no system messages", func(t *testing.T) {
		system, conversation := extractSystemPrompt([]model.Message{
			{Role: model.RoleUser, Content: "hi"},
		})
		if system != "" {
			t.Errorf("expected empty system prompt, got %q", system)
		}
		if len(conversation) != 1 {
			t.Errorf("expected 1 message, got %d", len(conversation))
		}
	})
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]model.Message{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	})

	if len(converted) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(converted))
	}
	if converted[0].Role != "user" {
		t.Errorf("expected user role, got %q", converted[0].Role)
	}
	if converted[1].Role != "assistant" {
		t.Errorf("expected assistant role, got %q", converted[1].Role)
	}
}

func TestNewChatModel_DefaultModel(t *testing.T) {
	m := NewChatModel("key", "")
	if m.modelName == "" {
		t.Error("expected a default model name")
	}
}
