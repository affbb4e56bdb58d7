package openai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/magiclab/magicprompt/model"
)

// fakeClient scripts per-attempt outcomes for retry tests.
type fakeClient struct {
	results []result
	calls   int
}

type result struct {
	out model.ChatOut
	err error
}

func (f *fakeClient) createChatCompletion(ctx context.Context, messages []model.Message, opts model.Options) (model.ChatOut, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	return f.results[idx].out, f.results[idx].err
}

func newTestModel(client openaiClient) *ChatModel {
	return &ChatModel{
		modelName:  "test-model",
		client:     client,
		maxRetries: 3,
		retryDelay: time.Millisecond,
	}
}

func TestChatModel_Chat(t *testing.T) {
	ctx := context.Background()
	messages := []model.Message{{Role: model.RoleUser, Content: "hi"}}

	t.Run("success on first attempt", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{out: model.ChatOut{Text: "hello", TokensUsed: 7}},
		}}

		out, err := newTestModel(client).Chat(ctx, messages, model.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Text != "hello" || out.TokensUsed != 7 {
			t.Errorf("unexpected output: %+v", out)
		}
		if client.calls != 1 {
			t.Errorf("expected 1 call, got %d", client.calls)
		}
	})

	t.Run("retries transient errors", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{err: errors.New("connection refused")},
			{err: errors.New("503 service unavailable")},
			{out: model.ChatOut{Text: "recovered"}},
		}}

		out, err := newTestModel(client).Chat(ctx, messages, model.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Text != "recovered" {
			t.Errorf("unexpected output: %+v", out)
		}
		if client.calls != 3 {
			t.Errorf("expected 3 calls, got %d", client.calls)
		}
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{err: errors.New("401 invalid api key")},
		}}

		_, err := newTestModel(client).Chat(ctx, messages, model.Options{})
		if err == nil {
			t.Fatal("expected an error")
		}
		if client.calls != 1 {
			t.Errorf("permanent errors must not retry, got %d calls", client.calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{err: errors.New("network unreachable")},
		}}

		_, err := newTestModel(client).Chat(ctx, messages, model.Options{})
		if err == nil {
			t.Fatal("expected an error")
		}
		if client.calls != 4 {
			t.Errorf("expected initial attempt plus 3 retries, got %d calls", client.calls)
		}
	})

	t.Run("rate limits use backoff and retry", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{err: &rateLimitError{message: "slow down"}},
			{out: model.ChatOut{Text: "ok"}},
		}}

		out, err := newTestModel(client).Chat(ctx, messages, model.Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Text != "ok" {
			t.Errorf("unexpected output: %+v", out)
		}
	})

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		client := &fakeClient{results: []result{
			{out: model.ChatOut{Text: "never"}},
		}}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := newTestModel(client).Chat(cancelled, messages, model.Options{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if client.calls != 0 {
			t.Errorf("expected no calls, got %d", client.calls)
		}
	})
}

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", errors.New("request timeout"), true},
		{"connection", errors.New("connection reset by peer"), true},
		{"server error", errors.New("502 bad gateway"), true},
		{"rate limit type", &rateLimitError{message: "x"}, true},
		{"rate limit status", errors.New("429 too many requests"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"bad request", errors.New("400 invalid model"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientError(tt.err); got != tt.want {
				t.Errorf("isTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]model.Message{
		{Role: model.RoleSystem, Content: "be brief"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	})
	if len(converted) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(converted))
	}
	if converted[0].OfSystem == nil {
		t.Error("expected a system message first")
	}
	if converted[1].OfUser == nil {
		t.Error("expected a user message second")
	}
	if converted[2].OfAssistant == nil {
		t.Error("expected an assistant message third")
	}
}
