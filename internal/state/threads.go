package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sovereignhq/assistant/internal/models"
)

// Instructions given to an assistant provisioned on behalf of a caller that
// created a thread without naming one.
const (
	defaultAssistantName         = "Default Assistant"
	defaultAssistantInstructions = "You are a helpful assistant."
)

// CreateThreadResult reports which assistant a new thread was attached to.
// ProvisionedDefault is true when no assistant id was supplied and none
// existed, so a default one was created in the same transaction. Callers are
// never left guessing which configuration their thread runs under.
type CreateThreadResult struct {
	Thread             *models.Thread
	AssistantID        string
	ProvisionedDefault bool
}

// CreateThread creates a conversation thread. An empty assistantID resolves
// to the most recently created assistant; if the store holds none, a default
// assistant is provisioned and flagged in the result. A non-empty assistantID
// that does not resolve fails with ErrNotFound.
func (m *Manager) CreateThread(ctx context.Context, assistantID string, metadata json.RawMessage) (*CreateThreadResult, error) {
	now := time.Now().UTC()
	t := &models.Thread{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}
	res := &CreateThreadResult{Thread: t}

	err := m.withTx(ctx, func(tx *sql.Tx) error {
		switch {
		case assistantID != "":
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM assistants WHERE id = ?`, assistantID).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("assistant", assistantID)
			}
			if err != nil {
				return &StorageError{Op: "create thread", Err: err}
			}
			t.AssistantID = assistantID

		default:
			var id string
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM assistants ORDER BY created_at DESC, id LIMIT 1`).Scan(&id)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				id = uuid.NewString()
				_, err = tx.ExecContext(ctx,
					`INSERT INTO assistants (id, name, instructions, model, created_at, updated_at)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					id, defaultAssistantName, defaultAssistantInstructions, defaultModel, now, now)
				if err != nil {
					return wrapWriteError("create thread", err)
				}
				res.ProvisionedDefault = true
			case err != nil:
				return &StorageError{Op: "create thread", Err: err}
			}
			t.AssistantID = id
		}
		res.AssistantID = t.AssistantID

		var meta any
		if len(t.Metadata) > 0 {
			meta = string(t.Metadata)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO threads (id, assistant_id, metadata, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.AssistantID, meta, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return wrapWriteError("create thread", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("created thread",
		zap.String("id", t.ID),
		zap.String("assistant_id", t.AssistantID),
		zap.Bool("provisioned_default", res.ProvisionedDefault))
	return res, nil
}

// GetThread returns the thread with the given id. Read-only and lock-free.
func (m *Manager) GetThread(ctx context.Context, id string) (*models.Thread, error) {
	return getThread(ctx, m.db, id)
}

// querier is the common surface of *sql.DB and *sql.Tx used by shared reads.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getThread(ctx context.Context, q querier, id string) (*models.Thread, error) {
	t := &models.Thread{}
	var meta sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, assistant_id, metadata, created_at, updated_at
		 FROM threads WHERE id = ?`, id).
		Scan(&t.ID, &t.AssistantID, &meta, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("thread", id)
	}
	if err != nil {
		return nil, &StorageError{Op: "get thread", Err: err}
	}
	if meta.Valid {
		t.Metadata = json.RawMessage(meta.String)
	}
	return t, nil
}

// UpdateThread replaces the thread's metadata document and touches its
// updated_at. Nil metadata means "leave the stored document unchanged", not
// "erase it". The metadata's internal shape is never interpreted.
func (m *Manager) UpdateThread(ctx context.Context, id string, metadata json.RawMessage) (*models.Thread, error) {
	var t *models.Thread
	err := m.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		t, err = getThread(ctx, tx, id)
		if err != nil {
			return err
		}

		t.UpdatedAt = time.Now().UTC()

		if len(metadata) > 0 {
			t.Metadata = metadata
			_, err = tx.ExecContext(ctx,
				`UPDATE threads SET metadata = ?, updated_at = ? WHERE id = ?`,
				string(metadata), t.UpdatedAt, id)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE threads SET updated_at = ? WHERE id = ?`, t.UpdatedAt, id)
		}
		if err != nil {
			return wrapWriteError("update thread", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("updated thread", zap.String("id", id))
	return t, nil
}

// DeleteThread removes a thread and all its messages in one transaction.
// Deleting an absent or already-deleted thread fails with ErrNotFound.
func (m *Manager) DeleteThread(ctx context.Context, id string) error {
	err := m.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE thread_id = ?`, id); err != nil {
			return wrapWriteError("delete thread", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ?`, id)
		if err != nil {
			return wrapWriteError("delete thread", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &StorageError{Op: "delete thread", Err: err}
		}
		if n == 0 {
			return notFound("thread", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("deleted thread and associated messages", zap.String("id", id))
	return nil
}

// ListThreads returns threads newest first, optionally filtered to one
// assistant. Read-only and lock-free.
func (m *Manager) ListThreads(ctx context.Context, assistantID string, offset, limit int) ([]models.Thread, error) {
	offset, limit = normalizePage(offset, limit)

	query := `SELECT id, assistant_id, metadata, created_at, updated_at FROM threads`
	args := []any{}
	if assistantID != "" {
		query += ` WHERE assistant_id = ?`
		args = append(args, assistantID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list threads", Err: err}
	}
	defer rows.Close()

	threads := make([]models.Thread, 0)
	for rows.Next() {
		var t models.Thread
		var meta sql.NullString
		if err := rows.Scan(&t.ID, &t.AssistantID, &meta, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, &StorageError{Op: "list threads", Err: err}
		}
		if meta.Valid {
			t.Metadata = json.RawMessage(meta.String)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list threads", Err: err}
	}
	return threads, nil
}
