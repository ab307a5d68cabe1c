// Package tokens turns text into model tokens.
//
// The context-budget code never counts characters or bytes. It works on an
// Encoding: the ordered byte spans of every token in a piece of text, as
// produced by a Tokenizer. Spans let callers cut text at exact token
// boundaries without re-tokenizing.
//
// # Tokenizers
//
// Tiktoken wraps a BPE encoding from tiktoken-go. It is accurate for OpenAI
// models and a reasonable approximation for most others:
//
//	tok, err := tokens.NewTiktoken(tokens.DefaultEncoding)
//	enc, err := tok.Encode("Hello, world!")
//	enc.Len() // 4
//
// Words is a deterministic tokenizer that treats each run of letters and
// digits, and each other visible character, as one token. It is handy for
// tests and for predictable budgets.
//
// Construct a tokenizer once and share it; both implementations are safe for
// concurrent use.
//
// # Counter
//
// The Counter interface answers "how many tokens" without exposing spans:
//
//	counter := tokens.NewCounter(tok)
//	counter.Count("Hello, world!")
//	counter.Fits(text, 1000)
//
// Approx skips BPE entirely and cuts text into runs of four runes. It is a
// Tokenizer like the others, so it can drive a budget when no encoding is
// available, but its counts are only rough.
package tokens
