package model

import (
	"context"
	"sync"
)

// MockChatModel is a test implementation of ChatModel.
//
// Use it to exercise chat behavior without real API calls. It provides
// configurable responses, error injection, and call history:
//
//	mock := &model.MockChatModel{
//	    Responses: []model.ChatOut{{Text: "hi"}, {Text: "bye"}},
//	}
//	out, _ := mock.Chat(ctx, messages, model.Options{})
//	// "hi" first, "bye" second; the last response repeats thereafter.
type MockChatModel struct {
	// Responses is the sequence of replies to return. When exhausted, the
	// last response repeats.
	Responses []ChatOut

	// Err, if set, is returned by Chat instead of a response.
	Err error

	// Calls records every Chat invocation.
	Calls []MockChatCall

	mu        sync.Mutex
	callIndex int
}

// MockChatCall records a single invocation of Chat.
type MockChatCall struct {
	Messages []Message
	Opts     Options
}

// Chat implements the ChatModel interface.
// The call is recorded regardless of success or failure.
func (m *MockChatModel) Chat(ctx context.Context, messages []Message, opts Options) (ChatOut, error) {
	if ctx.Err() != nil {
		return ChatOut{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockChatCall{Messages: messages, Opts: opts})

	if m.Err != nil {
		return ChatOut{}, m.Err
	}
	if len(m.Responses) == 0 {
		return ChatOut{}, nil
	}

	out := m.Responses[m.callIndex]
	if m.callIndex < len(m.Responses)-1 {
		m.callIndex++
	}
	return out, nil
}
