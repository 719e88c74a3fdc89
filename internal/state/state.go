// Package state persists and serves conversational state: assistants
// (configuration), threads (conversations) and messages (turns). All mutation
// goes through a single unit-of-work discipline so that callers never observe
// a half-committed state.
package state

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS assistants (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    instructions TEXT NOT NULL,
    model TEXT NOT NULL DEFAULT 'gpt-4',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assistants_created_at ON assistants(created_at);

CREATE TABLE IF NOT EXISTS threads (
    id TEXT PRIMARY KEY,
    assistant_id TEXT NOT NULL REFERENCES assistants(id) ON DELETE CASCADE,
    metadata TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_threads_assistant_id ON threads(assistant_id);

CREATE TABLE IF NOT EXISTS messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    thread_id TEXT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    token_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_messages_thread_time ON messages(thread_id, timestamp, seq);
`

// defaultModel matches the schema default and is used when a caller leaves the
// model identifier blank.
const defaultModel = "gpt-4"

// TokenCounter estimates the token footprint of message content. The
// inference collaborator supplies the real implementation; a crude built-in
// heuristic is used when none is given.
type TokenCounter interface {
	Count(text string) int
}

// fallbackCounter is the dependency-free estimate: max(1, len/4). It makes no
// accuracy claim against any specific tokenizer.
type fallbackCounter struct{}

func (fallbackCounter) Count(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Manager owns the backing store and exposes the repository operations for
// all three entities. SQLite serializes writers; that single-writer
// serialization is the only concurrency control, so every write path must go
// through withTx.
type Manager struct {
	db      *sql.DB
	logger  *zap.Logger
	counter TokenCounter
}

// New opens (or creates) the SQLite database at path, ensures the schema and
// returns a Manager. A nil counter selects the built-in length heuristic; a
// nil logger disables logging.
func New(path string, counter TokenCounter, logger *zap.Logger) (*Manager, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StorageError{Op: "open", Err: err}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_fk=1&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StorageError{Op: "init schema", Err: err}
	}

	if counter == nil {
		counter = fallbackCounter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{db: db, logger: logger, counter: counter}, nil
}

// Close releases the underlying database handle.
func (m *Manager) Close() error { return m.db.Close() }

// Ping verifies the backing store is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// withTx runs fn inside one transaction: commit on success, rollback on any
// error. No partial mutation is ever visible outside the scope.
func (m *Manager) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			m.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	return nil
}

// normalizePage clamps pagination arguments: negative offsets become 0 and a
// non-positive limit selects the default page size.
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}
	return offset, limit
}
