package state

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/models"
)

// AddMessage appends one turn to a thread. The token count is estimated at
// insertion time and never recomputed. The parent thread's updated_at is
// touched in the same transaction, so either both changes land or neither
// does.
func (m *Manager) AddMessage(ctx context.Context, threadID string, role models.Role, content string) (*models.Message, error) {
	if !role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: "must be one of system, user, assistant"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	now := time.Now().UTC()
	msg := &models.Message{
		ID:         uuid.NewString(),
		ThreadID:   threadID,
		Role:       role,
		Content:    content,
		Timestamp:  now,
		TokenCount: m.counter.Count(content),
	}

	err := m.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM threads WHERE id = ?`, threadID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("thread", threadID)
		}
		if err != nil {
			return &StorageError{Op: "add message", Err: err}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, thread_id, role, content, timestamp, token_count)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.ThreadID, string(msg.Role), msg.Content, msg.Timestamp, msg.TokenCount)
		if err != nil {
			return wrapWriteError("add message", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE threads SET updated_at = ? WHERE id = ?`, now, threadID)
		if err != nil {
			return wrapWriteError("add message", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("added message",
		zap.String("id", msg.ID),
		zap.String("thread_id", threadID),
		zap.String("role", string(role)),
		zap.Int("token_count", msg.TokenCount))
	return msg, nil
}

// ListMessages returns a thread's messages in chronological order, earliest
// first, with ties broken by insertion order. Fails with ErrNotFound if the
// thread is absent.
func (m *Manager) ListMessages(ctx context.Context, threadID string, offset, limit int) ([]models.Message, error) {
	offset, limit = normalizePage(offset, limit)

	if _, err := getThread(ctx, m.db, threadID); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, thread_id, role, content, timestamp, token_count
		 FROM messages WHERE thread_id = ?
		 ORDER BY timestamp, seq LIMIT ? OFFSET ?`,
		threadID, limit, offset)
	if err != nil {
		return nil, &StorageError{Op: "list messages", Err: err}
	}
	defer rows.Close()

	return scanMessages(rows)
}

// PruneMessages deletes the oldest messages of a thread beyond the most
// recent keepCount, atomically, and returns how many were deleted. Pruning a
// thread that is already short deletes zero and is not an error; a newer
// message is never deleted while an older one is retained.
func (m *Manager) PruneMessages(ctx context.Context, threadID string, keepCount int) (int, error) {
	if keepCount < 0 {
		return 0, &ValidationError{Field: "keep_count", Reason: "must not be negative"}
	}

	var deleted int64
	err := m.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM threads WHERE id = ?`, threadID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("thread", threadID)
		}
		if err != nil {
			return &StorageError{Op: "prune messages", Err: err}
		}

		// Everything older than the keepCount newest goes. LIMIT -1 means
		// unbounded in SQLite.
		res, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE seq IN (
				SELECT seq FROM messages WHERE thread_id = ?
				ORDER BY timestamp DESC, seq DESC LIMIT -1 OFFSET ?
			)`, threadID, keepCount)
		if err != nil {
			return wrapWriteError("prune messages", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return &StorageError{Op: "prune messages", Err: err}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		m.logger.Info("pruned messages",
			zap.String("thread_id", threadID),
			zap.Int64("deleted", deleted),
			zap.Int("kept", keepCount))
	}
	return int(deleted), nil
}

func scanMessages(rows *sql.Rows) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var role string
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &role, &msg.Content, &msg.Timestamp, &msg.TokenCount); err != nil {
			return nil, &StorageError{Op: "scan message", Err: err}
		}
		msg.Role = models.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "scan message", Err: err}
	}
	return messages, nil
}
