package truncate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/randalmurphal/promptbox/tokens"
)

// At slices text so that limit tokens remain, keeping the side given by keep.
//
// Text with fewer than limit tokens is returned unchanged. Text with exactly
// limit tokens goes through the cut, which leaves it as is apart from
// whitespace at the cut edge. enc must be the Encoding of text.
func At(limit int, keep Keep, text string, enc tokens.Encoding) string {
	if enc.Len() < limit {
		return text
	}
	if limit <= 0 {
		return ""
	}

	if keep.OrDefault() == KeepEnd {
		start := enc.Span(enc.Len() - limit).Start
		for start < len(text) && !utf8.RuneStart(text[start]) {
			start++
		}
		return strings.TrimLeftFunc(text[start:], unicode.IsSpace)
	}

	end := enc.Span(limit - 1).End
	for end > 0 && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	return strings.TrimRightFunc(text[:end], unicode.IsSpace)
}

// Truncator truncates text to fit within token limits.
type Truncator struct {
	tokenizer tokens.Tokenizer
	keep      Keep
}

// New creates a truncator that keeps the given side.
// It uses the Words tokenizer until WithTokenizer is called.
func New(keep Keep) *Truncator {
	return &Truncator{
		tokenizer: tokens.NewWords(),
		keep:      keep.OrDefault(),
	}
}

// NewKeepStart creates a truncator that removes content from the end.
func NewKeepStart() *Truncator {
	return New(KeepStart)
}

// NewKeepEnd creates a truncator that removes content from the start.
func NewKeepEnd() *Truncator {
	return New(KeepEnd)
}

// WithTokenizer sets the tokenizer used to measure text.
func (t *Truncator) WithTokenizer(tok tokens.Tokenizer) *Truncator {
	t.tokenizer = tok
	return t
}

// Truncate reduces the text to at most maxTokens tokens.
// Returns the truncated text and whether truncation occurred.
func (t *Truncator) Truncate(text string, maxTokens int) (string, bool, error) {
	enc, err := t.tokenizer.Encode(text)
	if err != nil {
		return "", false, err
	}
	if enc.Len() <= maxTokens {
		return text, false, nil
	}
	return At(maxTokens, t.keep, text, enc), true, nil
}

// Keep returns the side the truncator preserves.
func (t *Truncator) Keep() Keep {
	return t.keep
}
