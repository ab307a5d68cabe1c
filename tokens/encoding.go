package tokens

import (
	"errors"
	"fmt"
)

// ErrInvalidText is returned when a tokenizer rejects its input.
var ErrInvalidText = errors.New("text cannot be tokenized")

// Span is the half-open byte range [Start, End) of one token in its source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Encoding is the tokenized form of a single text.
// Spans are in order, never overlap, and never move backwards.
type Encoding struct {
	spans []Span
}

// NewEncoding builds an Encoding from spans, checking that they are ordered
// and non-overlapping.
func NewEncoding(spans []Span) (Encoding, error) {
	prev := 0
	for i, s := range spans {
		if s.Start < prev || s.End < s.Start {
			return Encoding{}, fmt.Errorf("%w: span %d [%d,%d) regresses", ErrInvalidText, i, s.Start, s.End)
		}
		prev = s.End
	}
	return Encoding{spans: spans}, nil
}

// Len returns the number of tokens.
func (e Encoding) Len() int {
	return len(e.spans)
}

// Span returns the byte span of token i.
func (e Encoding) Span(i int) Span {
	return e.spans[i]
}

// Spans returns a copy of all token spans.
func (e Encoding) Spans() []Span {
	out := make([]Span, len(e.spans))
	copy(out, e.spans)
	return out
}

// Tokenizer produces an Encoding for a text.
// Implementations must return an empty Encoding for "" and must be safe for
// concurrent use.
type Tokenizer interface {
	Encode(text string) (Encoding, error)
}

// TokenizerFunc adapts a function to the Tokenizer interface.
type TokenizerFunc func(text string) (Encoding, error)

// Encode calls f(text).
func (f TokenizerFunc) Encode(text string) (Encoding, error) {
	return f(text)
}
