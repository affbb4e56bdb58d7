package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store.
//
// Use it when transcripts should live in shared infrastructure rather than a
// local file: several machines recording to one place, retention handled by
// the database, audit queries over sessions.
//
// The DSN format is the go-sql-driver one:
//
//	user:password@tcp(localhost:3306)/magicprompt?parseTime=true
//
// parseTime=true is required so created_at columns scan into time.Time.
// Never hardcode credentials; read the DSN from the environment.
type MySQLStore struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

// NewMySQLStore creates a MySQL-backed transcript store, creating the schema
// as needed and verifying connectivity with a ping.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

func (s *MySQLStore) createTables(ctx context.Context) error {
	turnsTable := `
		CREATE TABLE IF NOT EXISTS chat_turns (
			session_id VARCHAR(191) NOT NULL,
			seq INT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			tokens_used INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, seq)
		)
	`
	if _, err := s.db.ExecContext(ctx, turnsTable); err != nil {
		return fmt.Errorf("failed to create chat_turns table: %w", err)
	}
	return nil
}

// SaveTurn appends or replaces a turn in the session's transcript.
func (s *MySQLStore) SaveTurn(ctx context.Context, sessionID string, turn Turn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_turns (session_id, seq, question, answer, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			question = VALUES(question),
			answer = VALUES(answer),
			tokens_used = VALUES(tokens_used),
			created_at = VALUES(created_at)`,
		sessionID, turn.Seq, turn.Question, turn.Answer, turn.TokensUsed, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// LoadTranscript returns a session's turns ordered by Seq.
func (s *MySQLStore) LoadTranscript(ctx context.Context, sessionID string) ([]Turn, error) {
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
func (s *MySQLStore) ListSessions(ctx context.Context) ([]string, error) {
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
func (s *MySQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("store already closed")
	}
	s.closed = true
	return s.db.Close()
}
