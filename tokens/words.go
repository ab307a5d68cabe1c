package tokens

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Words tokenizes text into words and symbols.
// A run of letters, digits, or underscores is one token; every other
// non-space rune is a token of its own. Whitespace separates tokens and is
// never part of one.
type Words struct{}

// NewWords returns a Words tokenizer.
func NewWords() Words {
	return Words{}
}

// Encode implements Tokenizer.
func (Words) Encode(text string) (Encoding, error) {
	if !utf8.ValidString(text) {
		return Encoding{}, fmt.Errorf("%w: invalid UTF-8", ErrInvalidText)
	}

	var spans []Span
	inWord := false
	wordStart := 0

	for i, r := range text {
		switch {
		case isWordRune(r):
			if !inWord {
				inWord = true
				wordStart = i
			}
		default:
			if inWord {
				spans = append(spans, Span{Start: wordStart, End: i})
				inWord = false
			}
			if !unicode.IsSpace(r) {
				spans = append(spans, Span{Start: i, End: i + utf8.RuneLen(r)})
			}
		}
	}
	if inWord {
		spans = append(spans, Span{Start: wordStart, End: len(text)})
	}

	return Encoding{spans: spans}, nil
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
