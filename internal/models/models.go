package models

import (
	"encoding/json"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Assistant is a reusable configuration: a name, a system prompt and a model
// identifier. The model string is not validated against any registry.
type Assistant struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Instructions string    `json:"instructions"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Thread is one conversation owned by an assistant. Metadata is an opaque
// caller-defined JSON document, stored and returned verbatim.
type Thread struct {
	ID          string          `json:"id"`
	AssistantID string          `json:"assistant_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
}

// Message is one conversational turn. Messages are immutable once written;
// they only disappear through pruning or a cascade delete of their thread.
// TokenCount is an estimate computed at insertion time and never recomputed.
type Message struct {
	ID         string    `json:"id"`
	ThreadID   string    `json:"thread_id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	TokenCount int       `json:"token_count"`
}

// ContextMessage is one turn of the ordered context handed to a generation
// consumer.
type ContextMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
