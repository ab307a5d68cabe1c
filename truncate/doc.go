// Package truncate cuts text down to a token budget.
//
// Truncation works on token byte-offsets: given a text and its tokens.Encoding,
// At slices the text so that exactly limit tokens remain, keeping either the
// start or the end of the content. It never re-tokenizes, so the Encoding must
// belong to the text.
//
// # Keeping a side
//
//	truncate.At(3, truncate.KeepStart, "one two three four", enc) // "one two three"
//	truncate.At(3, truncate.KeepEnd, "one two three four", enc)   // "two three four"
//
// The kept side has whitespace at the cut trimmed away.
//
// # Truncator
//
// When only text is at hand, a Truncator tokenizes first:
//
//	tr := truncate.New(truncate.KeepEnd).WithTokenizer(tok)
//	result, truncated, err := tr.Truncate(text, 100)
//
// Or use the convenience function:
//
//	result, err := truncate.ToTokens(tok, text, 100)
//
// # UTF-8 Support
//
// Byte-level BPE tokens can end in the middle of a multi-byte character. Cuts
// are moved to the nearest character boundary inside the kept region, so
// results are always valid UTF-8.
package truncate
