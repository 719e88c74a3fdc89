package state

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/models"
)

// LoadContext returns every message of a thread as ordered {role, content}
// pairs, ready to hand to a generation consumer. The read runs inside a
// single transaction so a concurrent write on the same thread can never
// produce a context mixing a partially-committed message with committed ones.
func (m *Manager) LoadContext(ctx context.Context, threadID string) ([]models.ContextMessage, error) {
	var history []models.ContextMessage

	err := m.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM threads WHERE id = ?`, threadID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("thread", threadID)
		}
		if err != nil {
			return &StorageError{Op: "load context", Err: err}
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT role, content FROM messages WHERE thread_id = ?
			 ORDER BY timestamp, seq`, threadID)
		if err != nil {
			return &StorageError{Op: "load context", Err: err}
		}
		defer rows.Close()

		history = make([]models.ContextMessage, 0)
		for rows.Next() {
			var cm models.ContextMessage
			var role string
			if err := rows.Scan(&role, &cm.Content); err != nil {
				return &StorageError{Op: "load context", Err: err}
			}
			cm.Role = models.Role(role)
			history = append(history, cm)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("loaded context",
		zap.String("thread_id", threadID),
		zap.Int("messages", len(history)))
	return history, nil
}

// ContextWindow bounds how much history a thread accumulates. The retention
// policy is a recency window by message count, not by tokens: pruning keeps
// the configured number of trailing messages and makes no guarantee about the
// token budget of what remains. Pruning is never triggered automatically on
// insert; an operator or caller invokes it explicitly so the hot write path
// stays cheap.
type ContextWindow struct {
	state     *Manager
	keepCount int
}

// NewContextWindow returns a window that retains the keepCount most recent
// messages per thread. A non-positive keepCount defaults to 10.
func NewContextWindow(m *Manager, keepCount int) *ContextWindow {
	if keepCount <= 0 {
		keepCount = 10
	}
	return &ContextWindow{state: m, keepCount: keepCount}
}

// KeepCount reports the configured retention window.
func (w *ContextWindow) KeepCount() int { return w.keepCount }

// Load is the pure read path: the thread's ordered history from one
// consistent snapshot.
func (w *ContextWindow) Load(ctx context.Context, threadID string) ([]models.ContextMessage, error) {
	return w.state.LoadContext(ctx, threadID)
}

// Prune drops the thread's oldest messages beyond the retention window and
// returns the number deleted. Idempotent: a second call with no intervening
// writes deletes zero.
func (w *ContextWindow) Prune(ctx context.Context, threadID string) (int, error) {
	return w.state.PruneMessages(ctx, threadID, w.keepCount)
}
