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

// CreateAssistant stores a new assistant configuration. Name and instructions
// must be non-blank; a blank model falls back to the default identifier.
func (m *Manager) CreateAssistant(ctx context.Context, name, instructions, model string) (*models.Assistant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, &ValidationError{Field: "instructions", Reason: "must not be empty"}
	}
	if model == "" {
		model = defaultModel
	}

	now := time.Now().UTC()
	a := &models.Assistant{
		ID:           uuid.NewString(),
		Name:         name,
		Instructions: instructions,
		Model:        model,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := m.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assistants (id, name, instructions, model, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Instructions, a.Model, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return wrapWriteError("create assistant", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("created assistant", zap.String("id", a.ID), zap.String("name", a.Name))
	return a, nil
}

// GetAssistant returns the assistant with the given id. Read-only and
// lock-free.
func (m *Manager) GetAssistant(ctx context.Context, id string) (*models.Assistant, error) {
	a := &models.Assistant{}
	err := m.db.QueryRowContext(ctx,
		`SELECT id, name, instructions, model, created_at, updated_at
		 FROM assistants WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("assistant", id)
	}
	if err != nil {
		return nil, &StorageError{Op: "get assistant", Err: err}
	}
	return a, nil
}

// UpdateAssistantParams carries the partial update for an assistant. Nil
// fields are left unchanged; provided fields are re-validated with the same
// rules as creation.
type UpdateAssistantParams struct {
	Name         *string
	Instructions *string
	Model        *string
}

// UpdateAssistant applies a partial update and returns the updated record.
func (m *Manager) UpdateAssistant(ctx context.Context, id string, p UpdateAssistantParams) (*models.Assistant, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Instructions != nil && strings.TrimSpace(*p.Instructions) == "" {
		return nil, &ValidationError{Field: "instructions", Reason: "must not be empty"}
	}

	a := &models.Assistant{}
	err := m.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, instructions, model, created_at, updated_at
			 FROM assistants WHERE id = ?`, id).
			Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &a.CreatedAt, &a.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("assistant", id)
		}
		if err != nil {
			return &StorageError{Op: "update assistant", Err: err}
		}

		if p.Name != nil {
			a.Name = *p.Name
		}
		if p.Instructions != nil {
			a.Instructions = *p.Instructions
		}
		if p.Model != nil {
			a.Model = *p.Model
		}
		a.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`UPDATE assistants SET name = ?, instructions = ?, model = ?, updated_at = ? WHERE id = ?`,
			a.Name, a.Instructions, a.Model, a.UpdatedAt, a.ID)
		if err != nil {
			return wrapWriteError("update assistant", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("updated assistant", zap.String("id", id))
	return a, nil
}

// DeleteAssistant removes an assistant together with all its threads and
// their messages in one transaction. A second delete of the same id fails
// with ErrNotFound.
func (m *Manager) DeleteAssistant(ctx context.Context, id string) error {
	err := m.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM messages WHERE thread_id IN (SELECT id FROM threads WHERE assistant_id = ?)`, id); err != nil {
			return wrapWriteError("delete assistant", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM threads WHERE assistant_id = ?`, id); err != nil {
			return wrapWriteError("delete assistant", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM assistants WHERE id = ?`, id)
		if err != nil {
			return wrapWriteError("delete assistant", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &StorageError{Op: "delete assistant", Err: err}
		}
		if n == 0 {
			return notFound("assistant", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("deleted assistant and associated data", zap.String("id", id))
	return nil
}

// ListAssistants returns assistants ordered newest first. The order is
// deterministic, so the same offset/limit always yields the same slice absent
// concurrent writes. Read-only and lock-free.
func (m *Manager) ListAssistants(ctx context.Context, offset, limit int) ([]models.Assistant, error) {
	offset, limit = normalizePage(offset, limit)

	rows, err := m.db.QueryContext(ctx,
		`SELECT id, name, instructions, model, created_at, updated_at
		 FROM assistants ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, &StorageError{Op: "list assistants", Err: err}
	}
	defer rows.Close()

	assistants := make([]models.Assistant, 0)
	for rows.Next() {
		var a models.Assistant
		if err := rows.Scan(&a.ID, &a.Name, &a.Instructions, &a.Model, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, &StorageError{Op: "list assistants", Err: err}
		}
		assistants = append(assistants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list assistants", Err: err}
	}
	return assistants, nil
}
