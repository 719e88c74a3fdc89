package inference

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sovereignhq/assistant/internal/models"
)

var mockTemplates = []string{
	"Based on the conversation so far, %s points toward a clear next step.",
	"Looking at what you said about %s, a few things stand out worth unpacking.",
	"Here is my take on %s: the short answer is yes, with caveats.",
	"That is a good question about %s. Let me walk through it.",
}

// Mock simulates a generation backend without a model behind it. It keys its
// reply to the last user message, optionally injects failures for testing,
// and can stream word by word. Safe for concurrent use.
type Mock struct {
	// ErrorRate is the probability in [0, 1] that Generate fails with a
	// simulated error.
	ErrorRate float64
	// Delay is the total simulated processing time. Zero means no delay,
	// which is what tests want.
	Delay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock returns a mock engine with no delay and no injected failures.
func NewMock() *Mock {
	return &Mock{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (m *Mock) roll() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m.rng.Float64()
}

func (m *Mock) compose(history []models.ContextMessage) string {
	subject := lastUserMessage(history)
	if subject == "" {
		return "Hello! How can I help you today?"
	}
	// Truncate on rune boundaries so multi-byte content stays valid UTF-8.
	if r := []rune(subject); len(r) > 60 {
		subject = string(r[:60])
	}
	m.mu.Lock()
	template := mockTemplates[m.rng.Intn(len(mockTemplates))]
	m.mu.Unlock()
	return fmt.Sprintf(template, strings.TrimSpace(subject))
}

func (m *Mock) Generate(ctx context.Context, history []models.ContextMessage, model string) (string, error) {
	if m.roll() < m.ErrorRate {
		return "", fmt.Errorf("simulated inference error")
	}
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.compose(history), nil
}

// GenerateStream emits the reply word by word.
func (m *Mock) GenerateStream(ctx context.Context, history []models.ContextMessage, model string) (<-chan string, error) {
	if m.roll() < m.ErrorRate {
		return nil, fmt.Errorf("simulated inference error")
	}

	reply := m.compose(history)
	words := strings.Fields(reply)

	var pause time.Duration
	if len(words) > 0 {
		pause = m.Delay / time.Duration(len(words))
	}

	out := make(chan string)
	go func() {
		defer close(out)
		for i, word := range words {
			chunk := word
			if i < len(words)-1 {
				chunk += " "
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
			if pause > 0 {
				select {
				case <-time.After(pause):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
