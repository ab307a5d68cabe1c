package budget

import (
	"fmt"

	"github.com/randalmurphal/promptbox/tokens"
)

// Distribute removes toTrim tokens from args. See Trimmer.Distribute.
func Distribute(tok tokens.Tokenizer, toTrim int, opts ContextOptions, args Args) (Args, int, error) {
	return NewTrimmer(tok, opts).Distribute(toTrim, args)
}

// Distribute trims the arguments named in TrimArgs, in order, until toTrim
// tokens are gone. It returns a new argument set and the number of tokens
// removed, which is less than toTrim when the listed arguments run out.
// Names missing from args are skipped. Arguments not listed are never changed.
func (t *Trimmer) Distribute(toTrim int, args Args) (Args, int, error) {
	out := args.Clone()
	remaining := toTrim

	for _, name := range t.opts.TrimArgs {
		if remaining <= 0 {
			break
		}
		v, ok := out[name]
		if !ok {
			continue
		}

		nv, removed, err := t.Trim(remaining, v)
		if err != nil {
			return nil, 0, fmt.Errorf("trim argument %s: %w", name, err)
		}
		out[name] = nv
		remaining -= removed
	}

	return out, toTrim - remaining, nil
}
