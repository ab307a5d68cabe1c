package truncate

import (
	"unicode/utf8"

	"github.com/randalmurphal/promptbox/tokens"
)

// Ellipsis marks text cut by ToRunes.
const Ellipsis = "..."

// ToTokens truncates text to maxTokens tokens, keeping the start.
func ToTokens(tok tokens.Tokenizer, text string, maxTokens int) (string, error) {
	result, _, err := New(KeepStart).WithTokenizer(tok).Truncate(text, maxTokens)
	return result, err
}

// ToRunes cuts text to at most n runes. When n leaves room for it, the cut
// text ends in Ellipsis.
func ToRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	if n < len(Ellipsis) {
		return text[:runeOffset(text, n)]
	}
	return text[:runeOffset(text, n-len(Ellipsis))] + Ellipsis
}

// runeOffset returns the byte offset of rune n in s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
