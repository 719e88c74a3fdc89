package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/sovereignhq/assistant/internal/models"
)

// generateTimeout caps a single completion request.
const generateTimeout = 30 * time.Second

// OpenAI generates replies through any OpenAI-compatible completion endpoint
// (a hosted API, a local llama.cpp/ollama server behind the same protocol).
type OpenAI struct {
	llm llms.LLM
}

// NewOpenAI builds an engine against the given endpoint. defaultModel is used
// when a per-call model identifier is empty.
func NewOpenAI(baseURL, token, defaultModel string) (*OpenAI, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(defaultModel),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAI{llm: llm}, nil
}

func (o *OpenAI) Generate(ctx context.Context, history []models.ContextMessage, model string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	var opts []llms.CallOption
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, o.llm, buildPrompt(history), opts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	return strings.TrimSpace(completion), nil
}

// buildPrompt flattens the ordered context into a single prompt. System turns
// lead, then the conversation in order, then the cue for the reply.
func buildPrompt(history []models.ContextMessage) string {
	var b strings.Builder
	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	b.WriteString("assistant:")
	return b.String()
}
