// Package store provides persistence for chat transcripts.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested session ID has no recorded turns.
var ErrNotFound = errors.New("not found")

// Turn is a single question/answer exchange in a chat session.
type Turn struct {
	// Seq is the 1-based position of the turn within its session.
	Seq int `json:"seq"`

	// Question is the user's input for this turn.
	Question string `json:"question"`

	// Answer is the model's reply.
	Answer string `json:"answer"`

	// TokensUsed is the provider-reported token count, zero when unknown.
	TokensUsed int `json:"tokens_used,omitempty"`

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time `json:"created_at"`
}

// Store persists chat transcripts.
//
// Implementations:
//   - MemStore: in-memory, for tests and throwaway sessions
//   - SQLiteStore: single-file local persistence
//   - MySQLStore: shared relational persistence
//
// A store holds full conversations keyed by session ID, so a later run can
// review what was asked and answered. It has nothing to do with the prompt
// graph's traversal context, which is deliberately never persisted.
type Store interface {
	// SaveTurn appends or replaces a turn in the session's transcript.
	// Saving an existing (sessionID, Seq) pair overwrites that turn.
	SaveTurn(ctx context.Context, sessionID string, turn Turn) error

	// LoadTranscript returns a session's turns ordered by Seq.
	// Returns ErrNotFound when the session has no turns.
	LoadTranscript(ctx context.Context, sessionID string) ([]Turn, error)

	// ListSessions returns the IDs of all recorded sessions, sorted.
	ListSessions(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
