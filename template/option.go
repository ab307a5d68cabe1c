package template

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OptionType is the declared type of a template argument.
type OptionType string

// Option types.
const (
	TypeString  OptionType = "string"
	TypeNumber  OptionType = "number"
	TypeInteger OptionType = "integer"
	TypeBool    OptionType = "bool"
	// TypeFile arguments are paths; the template sees the file's contents.
	TypeFile OptionType = "file"
)

// OrDefault returns t, or TypeString when t is unset.
func (t OptionType) OrDefault() OptionType {
	if t == "" {
		return TypeString
	}
	return t
}

// Valid reports whether t is a known type.
func (t OptionType) Valid() bool {
	switch t.OrDefault() {
	case TypeString, TypeNumber, TypeInteger, TypeBool, TypeFile:
		return true
	}
	return false
}

// Option declares one template argument.
type Option struct {
	Type        OptionType `toml:"type,omitempty" yaml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=string,enum=number,enum=integer,enum=bool,enum=file"`
	Array       bool       `toml:"array,omitempty" yaml:"array,omitempty" json:"array,omitempty" jsonschema:"description=Accept the argument more than once"`
	Required    bool       `toml:"required,omitempty" yaml:"required,omitempty" json:"required,omitempty"`
	Default     any        `toml:"default,omitempty" yaml:"default,omitempty" json:"default,omitempty"`
	Description string     `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
}

// ParseValue converts one command-line value into the argument's type.
func (o Option) ParseValue(raw string) (any, error) {
	switch o.Type.OrDefault() {
	case TypeString:
		if raw == "" {
			return nil, fmt.Errorf("%w: empty string", ErrInvalidArgument)
		}
		return raw, nil
	case TypeNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, raw)
		}
		return v, nil
	case TypeInteger:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidArgument, raw)
		}
		return v, nil
	case TypeBool:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidArgument, raw)
		}
		return v, nil
	case TypeFile:
		data, err := os.ReadFile(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidArgument, raw, err)
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidFile, o.Type)
	}
}

// zero is the value an omitted argument gets.
func (o Option) zero() any {
	if o.Array {
		return []any{}
	}
	switch o.Type.OrDefault() {
	case TypeBool:
		return false
	case TypeString, TypeFile:
		return ""
	default:
		return nil
	}
}

// defaultValue returns the declared default in the shape the renderer expects.
func (o Option) defaultValue() any {
	if !o.Array {
		return o.Default
	}
	switch d := o.Default.(type) {
	case []any:
		return d
	case []string:
		out := make([]any, len(d))
		for i, s := range d {
			out[i] = s
		}
		return out
	default:
		return []any{d}
	}
}
