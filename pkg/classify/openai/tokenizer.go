package openai

import (
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts prompt tokens for budget trimming. It uses the
// model's tiktoken encoding when available and falls back to a
// bytes/4 estimate when the encoding cannot be loaded.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer builds a tokenizer for the given model. Unknown models
// fall back to the cl100k_base encoding, then to the estimate.
func NewTokenizer(model string) *Tokenizer {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, _ = tiktoken.GetEncoding("cl100k_base")
	}
	return &Tokenizer{enc: enc}
}

// Count returns the token count of text.
func (t *Tokenizer) Count(text string) int {
	if t == nil || t.enc == nil {
		return approxTokens(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Remaining returns how much of budget is left after spending text,
// floored at zero.
func (t *Tokenizer) Remaining(budget int, text string) int {
	left := budget - t.Count(text)
	if left < 0 {
		return 0
	}
	return left
}

// approxTokens estimates tokens as one per four bytes.
func approxTokens(text string) int {
	return (len(text) + 3) / 4
}
