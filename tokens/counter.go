package tokens

import (
	"fmt"
	"unicode/utf8"
)

// DefaultRunesPerToken is the Approx ratio used when none is given.
// English prose averages about four characters per BPE token.
const DefaultRunesPerToken = 4

// Counter counts tokens in text.
type Counter interface {
	// Count returns the number of tokens in text.
	Count(text string) int

	// Fits reports whether text takes at most limit tokens.
	Fits(text string, limit int) bool
}

// TokenizerCounter counts tokens with a real Tokenizer.
// Text the tokenizer rejects counts as zero tokens; use the Tokenizer
// directly when the error matters.
type TokenizerCounter struct {
	tokenizer Tokenizer
}

// NewCounter adapts a Tokenizer to the Counter interface.
func NewCounter(tok Tokenizer) *TokenizerCounter {
	return &TokenizerCounter{tokenizer: tok}
}

// Count implements Counter.
func (c *TokenizerCounter) Count(text string) int {
	enc, err := c.tokenizer.Encode(text)
	if err != nil {
		return 0
	}
	return enc.Len()
}

// Fits implements Counter.
func (c *TokenizerCounter) Fits(text string, limit int) bool {
	return c.Count(text) <= limit
}

// Approx is a Tokenizer that cuts text into runs of a fixed number of runes.
// Whitespace is kept inside the runs, so every byte belongs to a token.
// It needs no BPE data and only approximates real token counts.
type Approx struct {
	runesPerToken int
}

// NewApprox returns an Approx tokenizer. A ratio <= 0 means
// DefaultRunesPerToken.
func NewApprox(runesPerToken int) Approx {
	if runesPerToken <= 0 {
		runesPerToken = DefaultRunesPerToken
	}
	return Approx{runesPerToken: runesPerToken}
}

// RunesPerToken returns the run length.
func (a Approx) RunesPerToken() int {
	if a.runesPerToken <= 0 {
		return DefaultRunesPerToken
	}
	return a.runesPerToken
}

// Encode implements Tokenizer.
func (a Approx) Encode(text string) (Encoding, error) {
	if !utf8.ValidString(text) {
		return Encoding{}, fmt.Errorf("%w: invalid UTF-8", ErrInvalidText)
	}

	n := a.RunesPerToken()
	spans := make([]Span, 0, utf8.RuneCountInString(text)/n+1)
	start, runes := 0, 0
	for i := range text {
		if runes == n {
			spans = append(spans, Span{Start: start, End: i})
			start, runes = i, 0
		}
		runes++
	}
	if runes > 0 {
		spans = append(spans, Span{Start: start, End: len(text)})
	}
	return Encoding{spans: spans}, nil
}
