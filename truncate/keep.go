package truncate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKeep is returned when a keep value is not "start" or "end".
var ErrInvalidKeep = errors.New("keep must be start or end")

// Keep selects which side of the content survives truncation.
type Keep string

const (
	// KeepStart keeps the beginning of the content (default).
	KeepStart Keep = "start"
	// KeepEnd keeps the end of the content.
	KeepEnd Keep = "end"
)

// ParseKeep parses a keep value. The empty string means KeepStart.
func ParseKeep(s string) (Keep, error) {
	switch Keep(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeepStart:
		return KeepStart, nil
	case KeepEnd:
		return KeepEnd, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidKeep, s)
	}
}

// OrDefault returns k, or KeepStart when k is unset.
func (k Keep) OrDefault() Keep {
	if k == "" {
		return KeepStart
	}
	return k
}

// String implements fmt.Stringer and pflag.Value.
func (k Keep) String() string {
	return string(k.OrDefault())
}

// Set implements pflag.Value.
func (k *Keep) Set(s string) error {
	v, err := ParseKeep(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Type implements pflag.Value.
func (k *Keep) Type() string {
	return "start|end"
}

// UnmarshalText validates keep values read from TOML and YAML.
func (k *Keep) UnmarshalText(b []byte) error {
	return k.Set(string(b))
}

// MarshalText implements encoding.TextMarshaler.
func (k Keep) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
