package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/magiclab/magicprompt/chat/store"
	"github.com/magiclab/magicprompt/model"
)

func TestLoop_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("answers until exit", func(t *testing.T) {
		mock := &model.MockChatModel{
			Responses: []model.ChatOut{{Text: "four"}, {Text: "red"}},
		}
		var out bytes.Buffer
		loop := NewLoop(mock,
			WithInput(strings.NewReader("what is 2+2?\nfavorite color?\nexit\n")),
			WithOutput(&out),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := out.String()
		if !strings.Contains(output, "four") || !strings.Contains(output, "red") {
			t.Errorf("expected both answers in output, got %q", output)
		}
		if got := strings.Count(output, "Enter your question (or 'exit' to quit): "); got != 3 {
			t.Errorf("expected the prompt 3 times, got %d", got)
		}
		if len(mock.Calls) != 2 {
			t.Fatalf("expected 2 model calls, got %d", len(mock.Calls))
		}
	})

	t.Run("exit is case-insensitive", func(t *testing.T) {
		mock := &model.MockChatModel{}
		loop := NewLoop(mock,
			WithInput(strings.NewReader("EXIT\n")),
			WithOutput(&bytes.Buffer{}),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mock.Calls) != 0 {
			t.Errorf("exit should not reach the model, got %d calls", len(mock.Calls))
		}
	})

	t.Run("each turn is independent", func(t *testing.T) {
		mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "a"}}}
		loop := NewLoop(mock,
			WithInput(strings.NewReader("first\nsecond\nexit\n")),
			WithOutput(&bytes.Buffer{}),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, call := range mock.Calls {
			if len(call.Messages) != 2 {
				t.Fatalf("call %d: expected [system, user], got %d messages", i, len(call.Messages))
			}
			if call.Messages[0].Role != model.RoleSystem {
				t.Errorf("call %d: expected system message first", i)
			}
			if call.Messages[0].Content != "Responses should be short and clear." {
				t.Errorf("call %d: unexpected system prompt %q", i, call.Messages[0].Content)
			}
		}
		if mock.Calls[1].Messages[1].Content != "second" {
			t.Error("second turn should carry only the second question, no history")
		}
	})

	t.Run("default generation options", func(t *testing.T) {
		mock := &model.MockChatModel{}
		loop := NewLoop(mock,
			WithInput(strings.NewReader("q\nexit\n")),
			WithOutput(&bytes.Buffer{}),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		opts := mock.Calls[0].Opts
		if opts.Temperature != 0.8 || opts.TopP != 0.7 {
			t.Errorf("unexpected sampling options: %+v", opts)
		}
		if len(opts.Stop) != 2 || opts.Stop[0] != "<|im_start|>" || opts.Stop[1] != "<|im_end|>" {
			t.Errorf("unexpected stop sequences: %v", opts.Stop)
		}
	})

	t.Run("model errors are printed and the loop continues", func(t *testing.T) {
		mock := &model.MockChatModel{Err: errors.New("connection refused")}
		var out bytes.Buffer
		loop := NewLoop(mock,
			WithInput(strings.NewReader("q1\nq2\nexit\n")),
			WithOutput(&out),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("the loop should survive model errors: %v", err)
		}

		if got := strings.Count(out.String(), "An error occurred: connection refused"); got != 2 {
			t.Errorf("expected 2 error lines, got %d in %q", got, out.String())
		}
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		mock := &model.MockChatModel{}
		loop := NewLoop(mock,
			WithInput(strings.NewReader("\n   \nexit\n")),
			WithOutput(&bytes.Buffer{}),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mock.Calls) != 0 {
			t.Errorf("blank input should not reach the model, got %d calls", len(mock.Calls))
		}
	})

	t.Run("end of input stops cleanly", func(t *testing.T) {
		loop := NewLoop(&model.MockChatModel{},
			WithInput(strings.NewReader("")),
			WithOutput(&bytes.Buffer{}),
		)
		if err := loop.Run(ctx); err != nil {
			t.Errorf("EOF should not be an error: %v", err)
		}
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		loop := NewLoop(&model.MockChatModel{},
			WithInput(strings.NewReader("q\nexit\n")),
			WithOutput(&bytes.Buffer{}),
		)
		if err := loop.Run(cancelled); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("records the transcript when a store is attached", func(t *testing.T) {
		mock := &model.MockChatModel{
			Responses: []model.ChatOut{{Text: "four", TokensUsed: 9}},
		}
		history := store.NewMemStore()
		loop := NewLoop(mock,
			WithInput(strings.NewReader("what is 2+2?\nexit\n")),
			WithOutput(&bytes.Buffer{}),
			WithStore(history, "s-1"),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		turns, err := history.LoadTranscript(ctx, "s-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(turns) != 1 {
			t.Fatalf("expected 1 recorded turn, got %d", len(turns))
		}
		if turns[0].Question != "what is 2+2?" || turns[0].Answer != "four" {
			t.Errorf("unexpected turn: %+v", turns[0])
		}
		if turns[0].TokensUsed != 9 {
			t.Errorf("expected token count 9, got %d", turns[0].TokensUsed)
		}
	})

	t.Run("failed turns are not recorded", func(t *testing.T) {
		mock := &model.MockChatModel{Err: errors.New("boom")}
		history := store.NewMemStore()
		loop := NewLoop(mock,
			WithInput(strings.NewReader("q\nexit\n")),
			WithOutput(&bytes.Buffer{}),
			WithStore(history, "s-1"),
		)

		if err := loop.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := history.LoadTranscript(ctx, "s-1"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestLoop_Metrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	mock := &model.MockChatModel{Responses: []model.ChatOut{{Text: "a", TokensUsed: 3}}}
	loop := NewLoop(mock,
		WithInput(strings.NewReader("q\nexit\n")),
		WithOutput(&bytes.Buffer{}),
		WithMetrics(metrics),
	)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Counters are exercised above; a nil *Metrics must also be safe.
	var nilMetrics *Metrics
	nilMetrics.TurnCompleted(0, 0)
	nilMetrics.TurnFailed()
}
