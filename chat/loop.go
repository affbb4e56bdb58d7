// Package chat implements an interactive question/answer loop against a
// ChatModel. Each turn is independent: the model sees only the system prompt
// and the current question, never earlier turns. Transcripts can optionally
// be recorded to a store.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/magiclab/magicprompt/chat/store"
	"github.com/magiclab/magicprompt/model"
)

const (
	defaultSystemPrompt = "Responses should be short and clear."
	defaultPrompt       = "Enter your question (or 'exit' to quit): "
)

// DefaultOptions are the generation settings used when none are supplied.
// They are tuned for small local models served behind an OpenAI-compatible
// endpoint.
func DefaultOptions() model.Options {
	return model.Options{
		Temperature: 0.8,
		TopP:        0.7,
		Stop:        []string{"<|im_start|>", "<|im_end|>"},
	}
}

// Loop reads questions from an input stream, queries the model, and writes
// answers to an output stream until the user types "exit" or the input ends.
type Loop struct {
	chatModel model.ChatModel
	input     io.Reader
	output    io.Writer
	system    string
	prompt    string
	genOpts   model.Options
	store     store.Store
	sessionID string
	metrics   *Metrics
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInput sets the stream questions are read from. Defaults to os.Stdin.
func WithInput(r io.Reader) LoopOption {
	return func(l *Loop) {
		l.input = r
	}
}

// WithOutput sets the stream answers are written to. Defaults to os.Stdout.
func WithOutput(w io.Writer) LoopOption {
	return func(l *Loop) {
		l.output = w
	}
}

// WithSystemPrompt overrides the system prompt sent with every turn.
func WithSystemPrompt(system string) LoopOption {
	return func(l *Loop) {
		l.system = system
	}
}

// WithPrompt overrides the text printed before reading each question.
func WithPrompt(prompt string) LoopOption {
	return func(l *Loop) {
		l.prompt = prompt
	}
}

// WithGenOptions overrides the generation settings for every turn.
func WithGenOptions(opts model.Options) LoopOption {
	return func(l *Loop) {
		l.genOpts = opts
	}
}

// WithStore records each completed turn to the given store under sessionID.
// Failed turns are not recorded.
func WithStore(s store.Store, sessionID string) LoopOption {
	return func(l *Loop) {
		l.store = s
		l.sessionID = sessionID
	}
}

// WithMetrics attaches Prometheus metrics to the loop.
func WithMetrics(m *Metrics) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// NewLoop creates a chat loop over the given model.
func NewLoop(chatModel model.ChatModel, opts ...LoopOption) *Loop {
	l := &Loop{
		chatModel: chatModel,
		input:     os.Stdin,
		output:    os.Stdout,
		system:    defaultSystemPrompt,
		prompt:    defaultPrompt,
		genOpts:   DefaultOptions(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes the loop until the user types "exit" (case-insensitive), the
// input stream ends, or the context is cancelled. Model errors are printed
// and the loop continues; only read errors and context cancellation stop it.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.input)
	seq := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.output, l.prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			return nil
		}

		answer, tokens, err := l.turn(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.metrics.TurnFailed()
			fmt.Fprintf(l.output, "An error occurred: %v\n", err)
			continue
		}

		fmt.Fprintln(l.output, answer)

		seq++
		if l.store != nil {
			turn := store.Turn{
				Seq:        seq,
				Question:   question,
				Answer:     answer,
				TokensUsed: tokens,
				CreatedAt:  time.Now().UTC(),
			}
			if err := l.store.SaveTurn(ctx, l.sessionID, turn); err != nil {
				fmt.Fprintf(l.output, "An error occurred: %v\n", err)
			}
		}
	}
}

func (l *Loop) turn(ctx context.Context, question string) (string, int, error) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: l.system},
		{Role: model.RoleUser, Content: question},
	}

	start := time.Now()
	out, err := l.chatModel.Chat(ctx, messages, l.genOpts)
	if err != nil {
		return "", 0, err
	}

	l.metrics.TurnCompleted(time.Since(start), out.TokensUsed)
	return out.Text, out.TokensUsed, nil
}
