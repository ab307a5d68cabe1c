package budget

import (
	"fmt"
	"math"

	"github.com/randalmurphal/promptbox/tokens"
	"github.com/randalmurphal/promptbox/truncate"
)

// Trimmer removes tokens from argument values.
type Trimmer struct {
	tokenizer tokens.Tokenizer
	opts      ContextOptions
}

// NewTrimmer creates a Trimmer that measures with tok and follows the keep
// side and array priority in opts.
func NewTrimmer(tok tokens.Tokenizer, opts ContextOptions) *Trimmer {
	return &Trimmer{tokenizer: tok, opts: opts}
}

// TrimValue removes up to toTrim tokens from v. See Trimmer.Trim.
func TrimValue(tok tokens.Tokenizer, toTrim int, opts ContextOptions, v Value) (Value, int, error) {
	return NewTrimmer(tok, opts).Trim(toTrim, v)
}

// Trim removes up to toTrim tokens from v and returns the new value with the
// number of tokens actually removed.
//
// A scalar longer than toTrim is cut to its length minus toTrim and reports
// exactly toTrim. A shorter scalar becomes "" and reports its full length.
// Arrays spread the cut over their elements by ArrayPriority and drop
// elements that end up empty. Other values are returned as is with 0.
func (t *Trimmer) Trim(toTrim int, v Value) (Value, int, error) {
	if toTrim <= 0 {
		return v, 0, nil
	}

	switch v := v.(type) {
	case Scalar:
		return t.trimScalar(toTrim, string(v), nil)
	case Array:
		return t.trimArray(toTrim, v)
	default:
		return v, 0, nil
	}
}

// trimScalar cuts s by toTrim tokens. enc may carry an Encoding of s that was
// already computed.
func (t *Trimmer) trimScalar(toTrim int, s string, enc *tokens.Encoding) (Value, int, error) {
	if toTrim <= 0 {
		return Scalar(s), 0, nil
	}
	if enc == nil {
		e, err := t.encode(s)
		if err != nil {
			return nil, 0, err
		}
		enc = &e
	}

	if enc.Len() > toTrim {
		return Scalar(truncate.At(enc.Len()-toTrim, t.opts.Keep, s, *enc)), toTrim, nil
	}
	return Scalar(""), enc.Len(), nil
}

func (t *Trimmer) trimArray(toTrim int, arr Array) (Value, int, error) {
	out := make(Array, len(arr))
	copy(out, arr)

	var removed int
	var err error
	switch t.opts.ArrayPriority.OrDefault() {
	case PriorityLast:
		removed, err = t.trimInOrder(toTrim, out, false)
	case PriorityEqual:
		removed, err = t.trimEqually(toTrim, out)
	default:
		removed, err = t.trimInOrder(toTrim, out, true)
	}
	if err != nil {
		return nil, 0, err
	}

	return dropEmpty(out), removed, nil
}

// trimInOrder trims whole elements one after another until toTrim is covered,
// walking from the back when reverse is set.
func (t *Trimmer) trimInOrder(toTrim int, arr Array, reverse bool) (int, error) {
	remaining := toTrim
	for n := 0; n < len(arr) && remaining > 0; n++ {
		i := n
		if reverse {
			i = len(arr) - 1 - n
		}

		v, removed, err := t.Trim(remaining, arr[i])
		if err != nil {
			return 0, err
		}
		arr[i] = v
		remaining -= removed
	}
	return toTrim - remaining, nil
}

// trimEqually cuts each element by round(elementTokens * toTrim/total).
// There is no correction pass, so rounding can leave the total slightly off.
func (t *Trimmer) trimEqually(toTrim int, arr Array) (int, error) {
	encs := make([]*tokens.Encoding, len(arr))
	counts := make([]int, len(arr))
	total := 0

	for i, v := range arr {
		switch v := v.(type) {
		case Scalar:
			enc, err := t.encode(string(v))
			if err != nil {
				return 0, err
			}
			encs[i] = &enc
			counts[i] = enc.Len()
		case Array:
			n, err := t.count(v)
			if err != nil {
				return 0, err
			}
			counts[i] = n
		}
		total += counts[i]
	}
	if total == 0 {
		return 0, nil
	}

	percent := float64(toTrim) / float64(total)
	removed := 0
	for i, v := range arr {
		share := int(math.Round(float64(counts[i]) * percent))
		if share <= 0 {
			continue
		}

		var (
			nv  Value
			n   int
			err error
		)
		switch v := v.(type) {
		case Scalar:
			nv, n, err = t.trimScalar(share, string(v), encs[i])
		case Array:
			nv, n, err = t.trimArray(share, v)
		default:
			continue
		}
		if err != nil {
			return 0, err
		}
		arr[i] = nv
		removed += n
	}
	return removed, nil
}

// count returns the number of tokens held by the scalars in v.
func (t *Trimmer) count(v Value) (int, error) {
	switch v := v.(type) {
	case Scalar:
		enc, err := t.encode(string(v))
		if err != nil {
			return 0, err
		}
		return enc.Len(), nil
	case Array:
		total := 0
		for _, e := range v {
			n, err := t.count(e)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	default:
		return 0, nil
	}
}

func (t *Trimmer) encode(s string) (tokens.Encoding, error) {
	enc, err := t.tokenizer.Encode(s)
	if err != nil {
		return tokens.Encoding{}, fmt.Errorf("%w: %w", ErrTokenizer, err)
	}
	return enc, nil
}

// dropEmpty removes elements that are empty strings.
func dropEmpty(arr Array) Array {
	out := arr[:0]
	for _, v := range arr {
		if s, ok := v.(Scalar); ok && s == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
