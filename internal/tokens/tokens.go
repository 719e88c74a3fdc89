// Package tokens estimates the token footprint of message content. Counts are
// advisory: they size the context window bookkeeping, they do not gate writes.
package tokens

import (
	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for message content.
type Counter interface {
	Count(text string) int
}

// Heuristic is the dependency-free estimate: max(1, len/4). It makes no
// accuracy claim against any particular tokenizer and exists so the core can
// run standalone, without vocabulary files or network access.
type Heuristic struct{}

func (Heuristic) Count(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// Tiktoken counts with a real BPE vocabulary.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// ForModel returns a tokenizer-backed counter for the given model identifier,
// falling back to the heuristic when the vocabulary cannot be resolved (the
// model string is free text and may name nothing tiktoken knows).
func ForModel(model string) Counter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return Heuristic{}
	}
	return &Tiktoken{enc: enc}
}
