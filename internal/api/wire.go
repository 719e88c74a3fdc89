package api

import (
	"encoding/json"

	"github.com/sovereignhq/assistant/internal/models"
)

// Wire schemas. Timestamps cross the wire as Unix epoch seconds.

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateAssistantRequest struct {
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model,omitempty"`
}

// UpdateAssistantRequest is a partial update: absent fields stay unchanged.
type UpdateAssistantRequest struct {
	Name         *string `json:"name,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Model        *string `json:"model,omitempty"`
}

type AssistantResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Instructions string `json:"instructions"`
	Model        string `json:"model"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func toAssistantResponse(a *models.Assistant) AssistantResponse {
	return AssistantResponse{
		ID:           a.ID,
		Name:         a.Name,
		Instructions: a.Instructions,
		Model:        a.Model,
		CreatedAt:    a.CreatedAt.Unix(),
		UpdatedAt:    a.UpdatedAt.Unix(),
	}
}

type CreateThreadRequest struct {
	AssistantID string          `json:"assistant_id,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// UpdateThreadRequest carries a replacement metadata document. An absent
// metadata field leaves the stored document unchanged.
type UpdateThreadRequest struct {
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ThreadResponse reports which assistant the thread is attached to;
// default_assistant is true when the server provisioned one because the
// caller named none and none existed.
type ThreadResponse struct {
	ID               string          `json:"id"`
	AssistantID      string          `json:"assistant_id"`
	CreatedAt        int64           `json:"created_at"`
	UpdatedAt        int64           `json:"updated_at"`
	Metadata         json.RawMessage `json:"metadata,omitempty"`
	DefaultAssistant bool            `json:"default_assistant,omitempty"`
}

func toThreadResponse(t *models.Thread) ThreadResponse {
	return ThreadResponse{
		ID:          t.ID,
		AssistantID: t.AssistantID,
		CreatedAt:   t.CreatedAt.Unix(),
		UpdatedAt:   t.UpdatedAt.Unix(),
		Metadata:    t.Metadata,
	}
}

type CreateMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type MessageResponse struct {
	ID         string `json:"id"`
	ThreadID   string `json:"thread_id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	CreatedAt  int64  `json:"created_at"`
	TokenCount int    `json:"token_count"`
}

func toMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		ThreadID:   m.ThreadID,
		Role:       string(m.Role),
		Content:    m.Content,
		CreatedAt:  m.Timestamp.Unix(),
		TokenCount: m.TokenCount,
	}
}

type CreateRunRequest struct {
	AssistantID string `json:"assistant_id"`
	Stream      bool   `json:"stream,omitempty"`
}

type RunResponse struct {
	ID          string `json:"id"`
	ThreadID    string `json:"thread_id"`
	AssistantID string `json:"assistant_id"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

type PruneRequest struct {
	KeepCount *int `json:"keep_count,omitempty"`
}

type PruneResponse struct {
	ThreadID string `json:"thread_id"`
	Deleted  int    `json:"deleted"`
	Kept     int    `json:"kept"`
}

type HealthResponse struct {
	Status    string  `json:"status"`
	Database  string  `json:"database"`
	LatencyMS float64 `json:"latency_ms"`
}
