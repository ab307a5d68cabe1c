package tokens

import (
	"fmt"
	"sync"
	"unicode/utf8"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktokenloader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE encoding used when no model-specific one is known.
// Most current models tokenize close enough to it for budgeting.
const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// useOfflineLoader installs the embedded BPE ranks so encodings load without
// network access.
func useOfflineLoader() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktokenloader.NewOfflineLoader())
	})
}

// Tiktoken is a Tokenizer backed by a tiktoken BPE encoding.
type Tiktoken struct {
	name string
	enc  *tiktoken.Tiktoken
}

// NewTiktoken loads the named encoding (e.g. "cl100k_base", "o200k_base").
// Loading parses the BPE ranks, so build one Tiktoken per process and reuse it.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	useOfflineLoader()

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{name: encoding, enc: enc}, nil
}

// NewTiktokenForModel picks the encoding a model uses, falling back to
// DefaultEncoding for models tiktoken does not know.
func NewTiktokenForModel(model string) (*Tiktoken, error) {
	useOfflineLoader()

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return NewTiktoken(DefaultEncoding)
	}
	return &Tiktoken{name: model, enc: enc}, nil
}

// Name returns the encoding or model name the tokenizer was built for.
func (t *Tiktoken) Name() string {
	return t.name
}

// Encode implements Tokenizer.
// Each token is decoded back to its bytes to recover its span, so spans always
// cover the text exactly. A token may end inside a multi-byte rune.
func (t *Tiktoken) Encode(text string) (Encoding, error) {
	if text == "" {
		return Encoding{}, nil
	}
	if !utf8.ValidString(text) {
		return Encoding{}, fmt.Errorf("%w: invalid UTF-8", ErrInvalidText)
	}

	ids := t.enc.Encode(text, nil, nil)
	spans := make([]Span, 0, len(ids))
	offset := 0
	for _, id := range ids {
		n := len(t.enc.Decode([]int{id}))
		spans = append(spans, Span{Start: offset, End: offset + n})
		offset += n
	}

	if offset != len(text) {
		return Encoding{}, fmt.Errorf("%w: %s covered %d of %d bytes", ErrInvalidText, t.name, offset, len(text))
	}
	return Encoding{spans: spans}, nil
}
