package budget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/promptbox/truncate"
)

// DefaultReserveOutput is the number of tokens kept free for the model's answer.
const DefaultReserveOutput = 256

// ErrInvalidPriority is returned for unknown array priorities.
var ErrInvalidPriority = errors.New("array priority must be first, last, or equal")

// ArrayPriority decides which elements of an array argument lose tokens first.
type ArrayPriority string

const (
	// PriorityFirst preserves the first elements (default).
	PriorityFirst ArrayPriority = "first"
	// PriorityLast preserves the last elements.
	PriorityLast ArrayPriority = "last"
	// PriorityEqual trims every element in proportion to its size.
	PriorityEqual ArrayPriority = "equal"
)

// ParseArrayPriority parses a priority. The empty string means PriorityFirst.
func ParseArrayPriority(s string) (ArrayPriority, error) {
	switch p := ArrayPriority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityFirst, nil
	case PriorityFirst, PriorityLast, PriorityEqual:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

// OrDefault returns p, or PriorityFirst when p is unset.
func (p ArrayPriority) OrDefault() ArrayPriority {
	if p == "" {
		return PriorityFirst
	}
	return p
}

// String implements fmt.Stringer and pflag.Value.
func (p ArrayPriority) String() string {
	return string(p.OrDefault())
}

// Set implements pflag.Value.
func (p *ArrayPriority) Set(s string) error {
	v, err := ParseArrayPriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value.
func (p *ArrayPriority) Type() string {
	return "first|last|equal"
}

// UnmarshalText validates priorities read from TOML and YAML.
func (p *ArrayPriority) UnmarshalText(b []byte) error {
	return p.Set(string(b))
}

// MarshalText implements encoding.TextMarshaler.
func (p ArrayPriority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ContextOptions controls how a prompt is fitted into the context window.
type ContextOptions struct {
	// Limit lowers the context size below what the host reports. Nil means
	// use the host's size.
	Limit *int

	// ReserveOutput is subtracted from the context size to leave room for
	// the answer.
	ReserveOutput int

	// Keep picks which side of trimmed content survives.
	Keep truncate.Keep

	// TrimArgs lists the arguments that may be shortened, in order. Empty
	// means the whole rendered prompt is truncated instead.
	TrimArgs []string

	// ArrayPriority controls how array arguments are trimmed.
	ArrayPriority ArrayPriority
}

// DefaultContextOptions returns options with the default output reservation,
// keeping the start of content and preserving leading array elements.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{
		ReserveOutput: DefaultReserveOutput,
		Keep:          truncate.KeepStart,
		ArrayPriority: PriorityFirst,
	}
}

// Validate checks the options for values the engine cannot use.
func (o ContextOptions) Validate() error {
	if o.Limit != nil && *o.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidOptions, *o.Limit)
	}
	if o.ReserveOutput < 0 {
		return fmt.Errorf("%w: reserve_output must be >= 0, got %d", ErrInvalidOptions, o.ReserveOutput)
	}
	if _, err := truncate.ParseKeep(string(o.Keep)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if _, err := ParseArrayPriority(string(o.ArrayPriority)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
