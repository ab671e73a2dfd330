package tokenizer

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Counter estimates how many tokens a prompt will consume.
type Counter struct {
	enc *tiktoken.Tiktoken
}

// New loads the BPE encoding for model. When no encoding can be loaded (offline, unknown model)
// the counter falls back to a four-characters-per-token estimate.
func New(model string, logger *slog.Logger) *Counter {
	log := logger.With("component", "llm.tokenizer")
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		log.Warn("tiktoken encoding unavailable, using estimate", "model", model, "error", err)
		return &Counter{}
	}
	return &Counter{enc: enc}
}

// Count returns the token count of text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if c == nil || c.enc == nil {
		return (utf8.RuneCountInString(text) + 3) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}
