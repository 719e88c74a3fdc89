// Package inference turns a thread's ordered context into generated text. The
// engine is pluggable: the mock and the OpenAI-backed implementation satisfy
// the same contract, so the rest of the system never knows which one it is
// talking to.
package inference

import (
	"context"

	"github.com/sovereignhq/assistant/internal/models"
)

// Engine generates a reply from an ordered conversation context. The model
// identifier comes from the assistant configuration and is passed through
// uninterpreted.
type Engine interface {
	Generate(ctx context.Context, history []models.ContextMessage, model string) (string, error)
}

// Streamer is implemented by engines that can emit a reply incrementally. The
// returned channel is closed when the reply is complete or the context is
// cancelled.
type Streamer interface {
	GenerateStream(ctx context.Context, history []models.ContextMessage, model string) (<-chan string, error)
}

// lastUserMessage returns the content of the most recent user turn, or "".
func lastUserMessage(history []models.ContextMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
