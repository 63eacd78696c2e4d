package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const progressKeyPrefix = "crossword-state:"

// ProgressStore persists one serialized letter string per puzzle.
type ProgressStore interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, state string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ProgressKey turns a puzzle identifier (often a file name) into a storage key.
func ProgressKey(puzzleID string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(puzzleID)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return progressKeyPrefix + b.String()
}

// memoryProgress keeps progress for the life of the process.
type memoryProgress struct {
	mu     sync.RWMutex
	states map[string]string
}

func NewMemoryProgress() ProgressStore {
	return &memoryProgress{states: make(map[string]string)}
}

func (m *memoryProgress) Load(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.states[key]
	return s, ok, nil
}

func (m *memoryProgress) Save(_ context.Context, key, state string) error {
	m.mu.Lock()
	m.states[key] = state
	m.mu.Unlock()
	return nil
}

func (m *memoryProgress) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.states, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryProgress) Close() error { return nil }

// sqliteProgress is a key/value table in a sqlite file.
type sqliteProgress struct {
	db *sql.DB
}

const progressSchema = `
CREATE TABLE IF NOT EXISTS progress (
	key        TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// OpenSQLiteProgress opens (creating if needed) the progress database at path.
func OpenSQLiteProgress(ctx context.Context, path string) (ProgressStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping progress db: %w", err)
	}
	if _, err := db.ExecContext(ctx, progressSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create progress schema: %w", err)
	}
	return &sqliteProgress{db: db}, nil
}

func (s *sqliteProgress) Load(ctx context.Context, key string) (string, bool, error) {
	var state string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM progress WHERE key = ?`, key).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load progress %s: %w", key, err)
	}
	return state, true, nil
}

func (s *sqliteProgress) Save(ctx context.Context, key, state string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (key, state, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		key, state, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save progress %s: %w", key, err)
	}
	return nil
}

func (s *sqliteProgress) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete progress %s: %w", key, err)
	}
	return nil
}

func (s *sqliteProgress) Close() error {
	return s.db.Close()
}

// restoreSession loads a session's letters: a share code wins, then stored
// progress, then the grid stays blank. It reports where the letters came from.
func restoreSession(ctx context.Context, s *Session, progress ProgressStore, share string) string {
	if share != "" {
		if err := s.LoadShareCode(share); err != nil {
			logWarn("share code rejected", "puzzle", s.PuzzleID, "error", err)
		} else {
			return "share"
		}
	}
	if progress == nil {
		return "blank"
	}
	state, ok, err := progress.Load(ctx, ProgressKey(s.PuzzleID))
	if err != nil {
		logError("load progress failed", "puzzle", s.PuzzleID, "error", err)
		return "blank"
	}
	if !ok {
		return "blank"
	}
	if err := s.LoadProgress(state); err != nil {
		logWarn("stored progress rejected", "puzzle", s.PuzzleID, "error", err)
		return "blank"
	}
	return "saved"
}
