package tokens

import (
	"strings"
	"testing"
)

func TestApprox_Encode(t *testing.T) {
	tests := []struct {
		name     string
		ratio    int
		text     string
		expected []string
	}{
		{
			name:     "empty string",
			ratio:    4,
			text:     "",
			expected: nil,
		},
		{
			name:     "shorter than one run",
			ratio:    4,
			text:     "a",
			expected: []string{"a"},
		},
		{
			name:     "exact runs",
			ratio:    4,
			text:     "testtest",
			expected: []string{"test", "test"},
		},
		{
			name:     "whitespace stays in runs",
			ratio:    4,
			text:     "Hello World",
			expected: []string{"Hell", "o Wo", "rld"},
		},
		{
			name:     "multi-byte runes count once",
			ratio:    2,
			text:     "héllo",
			expected: []string{"hé", "ll", "o"},
		},
		{
			name:     "zero ratio uses default",
			ratio:    0,
			text:     "abcdefgh",
			expected: []string{"abcd", "efgh"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewApprox(tt.ratio).Encode(tt.text)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, s := range enc.Spans() {
				got = append(got, tt.text[s.Start:s.End])
			}
			if strings.Join(got, "|") != strings.Join(tt.expected, "|") || len(got) != len(tt.expected) {
				t.Errorf("Encode(%q) = %q, expected %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestApprox_CoversText(t *testing.T) {
	text := strings.Repeat("Hello World ", 100)
	enc, err := NewApprox(3).Encode(text)
	if err != nil {
		t.Fatal(err)
	}

	if enc.Len() != 400 {
		t.Errorf("Len() = %d, expected 400", enc.Len())
	}
	prev := 0
	for i, s := range enc.Spans() {
		if s.Start != prev {
			t.Fatalf("span %d starts at %d, expected %d", i, s.Start, prev)
		}
		prev = s.End
	}
	if prev != len(text) {
		t.Errorf("spans end at %d, expected %d", prev, len(text))
	}
}

func TestApprox_InvalidText(t *testing.T) {
	if _, err := NewApprox(4).Encode("bad \xff"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestApprox_RunesPerToken(t *testing.T) {
	if got := (Approx{}).RunesPerToken(); got != DefaultRunesPerToken {
		t.Errorf("zero value RunesPerToken() = %d, expected %d", got, DefaultRunesPerToken)
	}
	if got := NewApprox(-2).RunesPerToken(); got != DefaultRunesPerToken {
		t.Errorf("negative ratio RunesPerToken() = %d, expected %d", got, DefaultRunesPerToken)
	}
	if got := NewApprox(3).RunesPerToken(); got != 3 {
		t.Errorf("RunesPerToken() = %d, expected 3", got)
	}
}

func TestTokenizerCounter(t *testing.T) {
	c := NewCounter(NewWords())

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{name: "empty", text: "", expected: 0},
		{name: "single word", text: "hello", expected: 1},
		{name: "words and punctuation", text: "Hello, World!", expected: 4},
		{name: "invalid utf8 counts as zero", text: "\xff\xfe", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.expected {
				t.Errorf("Count(%q) = %d, expected %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestTokenizerCounter_Fits(t *testing.T) {
	tests := []struct {
		name     string
		tok      Tokenizer
		text     string
		limit    int
		expected bool
	}{
		{name: "empty fits any limit", tok: NewWords(), text: "", limit: 0, expected: true},
		{name: "fits exactly", tok: NewWords(), text: "one two three", limit: 3, expected: true},
		{name: "one over", tok: NewWords(), text: "one two three four", limit: 3, expected: false},
		{name: "approx fits", tok: NewApprox(4), text: "testtest", limit: 2, expected: true},
		{name: "approx over", tok: NewApprox(4), text: "test test test", limit: 3, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewCounter(tt.tok).Fits(tt.text, tt.limit); got != tt.expected {
				t.Errorf("Fits(%q, %d) = %v, expected %v", tt.text, tt.limit, got, tt.expected)
			}
		})
	}
}

func TestCounter_Interface(t *testing.T) {
	var _ Counter = (*TokenizerCounter)(nil)
	var _ Tokenizer = Approx{}
}

func BenchmarkApprox_Encode(b *testing.B) {
	a := NewApprox(DefaultRunesPerToken)
	text := strings.Repeat("Hello World ", 100)

	b.ResetTimer()
	for range b.N {
		_, _ = a.Encode(text)
	}
}
