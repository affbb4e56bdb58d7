package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store.
//
// It keeps transcripts in a single-file database, which suits the chat CLI:
// zero setup, survives process restarts, one writer at a time. WAL mode is
// enabled so concurrent readers don't block.
//
// Example:
//
//	st, err := store.NewSQLiteStore("./chat.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer st.Close()
//
// For testing, use ":memory:" as the path.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	path   string
}

// NewSQLiteStore creates a SQLite-backed transcript store, creating the
// database file and schema as needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	turnsTable := `
		CREATE TABLE IF NOT EXISTS chat_turns (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			tokens_used INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (session_id, seq)
		)
	`
	if _, err := s.db.ExecContext(ctx, turnsTable); err != nil {
		return fmt.Errorf("failed to create chat_turns table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_turns_session ON chat_turns(session_id)"); err != nil {
		return fmt.Errorf("failed to create idx_turns_session: %w", err)
	}
	return nil
}

// SaveTurn appends or replaces a turn in the session's transcript.
func (s *SQLiteStore) SaveTurn(ctx context.Context, sessionID string, turn Turn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chat_turns (session_id, seq, question, answer, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, turn.Seq, turn.Question, turn.Answer, turn.TokensUsed, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// LoadTranscript returns a session's turns ordered by Seq.
func (s *SQLiteStore) LoadTranscript(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, question, answer, tokens_used, created_at
		FROM chat_turns WHERE session_id = ? ORDER BY seq`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var turn Turn
		if err := rows.Scan(&turn.Seq, &turn.Question, &turn.Answer, &turn.TokensUsed, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	if len(turns) == 0 {
		return nil, ErrNotFound
	}
	return turns, nil
}

// ListSessions returns the IDs of all recorded sessions, sorted.
func (s *SQLiteStore) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT session_id FROM chat_turns ORDER BY session_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session IDs: %w", err)
	}
	return ids, nil
}

// Close closes the underlying database. Closing twice is an error.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("store already closed")
	}
	s.closed = true
	return s.db.Close()
}
