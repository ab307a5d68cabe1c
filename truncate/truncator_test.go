package truncate

import (
	"strings"
	"testing"

	"github.com/randalmurphal/promptbox/tokens"
)

func encode(t *testing.T, tok tokens.Tokenizer, text string) tokens.Encoding {
	t.Helper()
	enc, err := tok.Encode(text)
	if err != nil {
		t.Fatalf("encode %q: %v", text, err)
	}
	return enc
}

func TestAt(t *testing.T) {
	words := tokens.NewWords()

	tests := []struct {
		name     string
		limit    int
		keep     Keep
		text     string
		expected string
	}{
		{
			name:     "under limit unchanged",
			limit:    10,
			keep:     KeepStart,
			text:     "one two three",
			expected: "one two three",
		},
		{
			name:     "under limit unchanged keep end",
			limit:    10,
			keep:     KeepEnd,
			text:     "  one two three  ",
			expected: "  one two three  ",
		},
		{
			name:     "keep start",
			limit:    3,
			keep:     KeepStart,
			text:     "one two three four five",
			expected: "one two three",
		},
		{
			name:     "keep end",
			limit:    3,
			keep:     KeepEnd,
			text:     "one two three four five",
			expected: "three four five",
		},
		{
			name:     "exact length keep start trims trailing space",
			limit:    3,
			keep:     KeepStart,
			text:     "one two three \n",
			expected: "one two three",
		},
		{
			name:     "exact length keep end trims leading space",
			limit:    3,
			keep:     KeepEnd,
			text:     "\n  one two three",
			expected: "one two three",
		},
		{
			name:     "keep start strips whitespace at cut",
			limit:    2,
			keep:     KeepStart,
			text:     "one two\n\nthree",
			expected: "one two",
		},
		{
			name:     "keep end strips whitespace at cut",
			limit:    1,
			keep:     KeepEnd,
			text:     "one two\n\n  three",
			expected: "three",
		},
		{
			name:     "unset keep means start",
			limit:    1,
			keep:     "",
			text:     "first second",
			expected: "first",
		},
		{
			name:     "zero limit",
			limit:    0,
			keep:     KeepStart,
			text:     "some text",
			expected: "",
		},
		{
			name:     "punctuation tokens",
			limit:    2,
			keep:     KeepStart,
			text:     "Hello, world!",
			expected: "Hello,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := At(tt.limit, tt.keep, tt.text, encode(t, words, tt.text))
			if result != tt.expected {
				t.Errorf("At(%d, %s, %q) = %q, expected %q", tt.limit, tt.keep, tt.text, result, tt.expected)
			}
		})
	}
}

func TestAt_PrefixAndSuffixProperties(t *testing.T) {
	words := tokens.NewWords()
	text := "The quick brown fox jumps over the lazy dog and keeps running far away"
	total := encode(t, words, text).Len()

	for limit := 1; limit < total; limit++ {
		start := At(limit, KeepStart, text, encode(t, words, text))
		if !strings.HasPrefix(text, start) {
			t.Fatalf("limit %d: %q is not a prefix", limit, start)
		}
		if n := encode(t, words, start).Len(); n != limit {
			t.Fatalf("limit %d: keep start left %d tokens", limit, n)
		}

		end := At(limit, KeepEnd, text, encode(t, words, text))
		if !strings.HasSuffix(text, end) {
			t.Fatalf("limit %d: %q is not a suffix", limit, end)
		}
		if n := encode(t, words, end).Len(); n != limit {
			t.Fatalf("limit %d: keep end left %d tokens", limit, n)
		}
	}
}

func TestAt_Idempotent(t *testing.T) {
	words := tokens.NewWords()
	text := "alpha beta gamma delta epsilon zeta"

	for _, keep := range []Keep{KeepStart, KeepEnd} {
		once := At(4, keep, text, encode(t, words, text))
		twice := At(4, keep, once, encode(t, words, once))
		if once != twice {
			t.Errorf("keep %s: second pass changed %q to %q", keep, once, twice)
		}
	}
}

func TestAt_SnapsToRuneBoundary(t *testing.T) {
	// "é" is two bytes; put token edges inside it.
	text := "aé b"
	splitStart, err := tokens.NewEncoding([]tokens.Span{{Start: 0, End: 2}, {Start: 2, End: 3}, {Start: 4, End: 5}})
	if err != nil {
		t.Fatal(err)
	}

	if got := At(1, KeepStart, text, splitStart); got != "a" {
		t.Errorf("keep start = %q, expected %q", got, "a")
	}
	if got := At(2, KeepEnd, text, splitStart); got != "b" {
		t.Errorf("keep end = %q, expected %q", got, "b")
	}
}

func TestAt_Tiktoken(t *testing.T) {
	tok, err := tokens.NewTiktoken(tokens.DefaultEncoding)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("Some blog post with a lot of content to summarize. ", 20)
	total := encode(t, tok, text).Len()

	start := At(total/2, KeepStart, text, encode(t, tok, text))
	if !strings.HasPrefix(text, start) || len(start) >= len(text) {
		t.Errorf("keep start produced %q", start)
	}

	end := At(total/2, KeepEnd, text, encode(t, tok, text))
	if !strings.HasSuffix(strings.TrimSpace(text), strings.TrimSpace(end)) || len(end) >= len(text) {
		t.Errorf("keep end produced %q", end)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		keep     Keep
		expected Keep
	}{
		{name: "keep start", keep: KeepStart, expected: KeepStart},
		{name: "keep end", keep: KeepEnd, expected: KeepEnd},
		{name: "unset defaults to start", keep: "", expected: KeepStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.keep)
			if tr.Keep() != tt.expected {
				t.Errorf("Keep() = %v, expected %v", tr.Keep(), tt.expected)
			}
		})
	}
}

func TestNewKeepStartAndEnd(t *testing.T) {
	if NewKeepStart().Keep() != KeepStart {
		t.Error("NewKeepStart should keep start")
	}
	if NewKeepEnd().Keep() != KeepEnd {
		t.Error("NewKeepEnd should keep end")
	}
}

func TestTruncator_Truncate_NoTruncationNeeded(t *testing.T) {
	tr := NewKeepStart()
	text := "short text"

	result, truncated, err := tr.Truncate(text, 2)
	if err != nil {
		t.Fatal(err)
	}
	if result != text {
		t.Errorf("result = %q, expected %q", result, text)
	}
	if truncated {
		t.Error("expected no truncation")
	}
}

func TestTruncator_Truncate(t *testing.T) {
	text := "one two three four five six"

	result, truncated, err := NewKeepStart().Truncate(text, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !truncated || result != "one two" {
		t.Errorf("keep start = %q (truncated=%v)", result, truncated)
	}

	result, truncated, err = NewKeepEnd().Truncate(text, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !truncated || result != "five six" {
		t.Errorf("keep end = %q (truncated=%v)", result, truncated)
	}
}

func TestTruncator_WithTokenizer(t *testing.T) {
	// Every byte is a token.
	perByte := tokens.TokenizerFunc(func(text string) (tokens.Encoding, error) {
		spans := make([]tokens.Span, len(text))
		for i := range text {
			spans[i] = tokens.Span{Start: i, End: i + 1}
		}
		return tokens.NewEncoding(spans)
	})

	result, truncated, err := NewKeepStart().WithTokenizer(perByte).Truncate("abcdefgh", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !truncated || result != "abc" {
		t.Errorf("result = %q (truncated=%v), expected %q", result, truncated, "abc")
	}
}

func TestTruncator_TokenizerError(t *testing.T) {
	_, _, err := NewKeepStart().Truncate("bad \xff", 1)
	if err == nil {
		t.Fatal("expected tokenizer error")
	}
}

func TestToTokens(t *testing.T) {
	result, err := ToTokens(tokens.NewWords(), "Some blog post with a lot of content to summarize", 7)
	if err != nil {
		t.Fatal(err)
	}
	if result != "Some blog post with a lot of" {
		t.Errorf("ToTokens() = %q", result)
	}
}

func TestParseKeep(t *testing.T) {
	tests := []struct {
		in      string
		want    Keep
		wantErr bool
	}{
		{in: "", want: KeepStart},
		{in: "start", want: KeepStart},
		{in: " End ", want: KeepEnd},
		{in: "middle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKeep(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseKeep(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestKeep_UnmarshalText(t *testing.T) {
	var k Keep
	if err := k.UnmarshalText([]byte("end")); err != nil {
		t.Fatal(err)
	}
	if k != KeepEnd {
		t.Errorf("k = %q, expected end", k)
	}
	if err := k.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for invalid keep")
	}
}

func TestToRunes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		n        int
		expected string
	}{
		{name: "shorter than n", text: "hello", n: 10, expected: "hello"},
		{name: "exact length", text: "hello", n: 5, expected: "hello"},
		{name: "cut with ellipsis", text: "hello world", n: 8, expected: "hello..."},
		{name: "only room for ellipsis", text: "hello world", n: 3, expected: "..."},
		{name: "too short for ellipsis", text: "hello", n: 2, expected: "he"},
		{name: "zero", text: "hello", n: 0, expected: ""},
		{name: "negative", text: "hello", n: -1, expected: ""},
		{name: "multi-byte runes", text: "héllo wörld", n: 6, expected: "hél..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRunes(tt.text, tt.n); got != tt.expected {
				t.Errorf("ToRunes(%q, %d) = %q, expected %q", tt.text, tt.n, got, tt.expected)
			}
		})
	}
}
