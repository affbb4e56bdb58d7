package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Store.
//
// Designed for tests and short-lived sessions where persistence isn't
// required. Thread-safe. Data is lost when the process terminates.
type MemStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn // sessionID -> turns ordered by Seq
}

// NewMemStore creates a new in-memory transcript store.
func NewMemStore() *MemStore {
	return &MemStore{turns: make(map[string][]Turn)}
}

// SaveTurn appends or replaces a turn in the session's transcript.
func (m *MemStore) SaveTurn(_ context.Context, sessionID string, turn Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := m.turns[sessionID]
	for i, existing := range turns {
		if existing.Seq == turn.Seq {
			turns[i] = turn
			return nil
		}
	}

	m.turns[sessionID] = append(turns, turn)
	return nil
}

// LoadTranscript returns a session's turns ordered by Seq.
func (m *MemStore) LoadTranscript(_ context.Context, sessionID string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	turns, ok := m.turns[sessionID]
	if !ok || len(turns) == 0 {
		return nil, ErrNotFound
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// ListSessions returns the IDs of all recorded sessions, sorted.
func (m *MemStore) ListSessions(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.turns))
	for id := range m.turns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}
