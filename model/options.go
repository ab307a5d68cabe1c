package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/promptbox/budget"
	"github.com/randalmurphal/promptbox/truncate"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid model options")

// Format requests a structured answer from the model.
type Format string

const (
	// FormatText is plain text output (default).
	FormatText Format = ""
	// FormatJSON asks the host for a JSON object.
	FormatJSON Format = "json"
)

// Options are the model parameters for one prompt.
// Unset fields are nil or empty and take their value from a lower layer.
type Options struct {
	Model            string   `toml:"model,omitempty" yaml:"model,omitempty" json:"model,omitempty" jsonschema:"description=Model name with an optional host prefix such as ollama/llama3"`
	Host             string   `toml:"host,omitempty" yaml:"host,omitempty" json:"host,omitempty" jsonschema:"description=Host that serves the model"`
	Temperature      *float64 `toml:"temperature,omitempty" yaml:"temperature,omitempty" json:"temperature,omitempty"`
	TopP             *float64 `toml:"top_p,omitempty" yaml:"top_p,omitempty" json:"top_p,omitempty"`
	TopK             *int     `toml:"top_k,omitempty" yaml:"top_k,omitempty" json:"top_k,omitempty"`
	FrequencyPenalty *float64 `toml:"frequency_penalty,omitempty" yaml:"frequency_penalty,omitempty" json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `toml:"presence_penalty,omitempty" yaml:"presence_penalty,omitempty" json:"presence_penalty,omitempty"`
	Stop             []string `toml:"stop,omitempty" yaml:"stop,omitempty" json:"stop,omitempty"`
	MaxTokens        *int     `toml:"max_tokens,omitempty" yaml:"max_tokens,omitempty" json:"max_tokens,omitempty"`
	Format           Format   `toml:"format,omitempty" yaml:"format,omitempty" json:"format,omitempty" jsonschema:"description=Set to json to request a JSON object"`

	Context ContextInput `toml:"context,omitempty" yaml:"context,omitempty" json:"context,omitempty"`
}

// ContextInput is the partially specified form of budget.ContextOptions.
type ContextInput struct {
	Limit         *int                 `toml:"limit,omitempty" yaml:"limit,omitempty" json:"limit,omitempty" jsonschema:"description=Lower context size limit for the model"`
	ReserveOutput *int                 `toml:"reserve_output,omitempty" yaml:"reserve_output,omitempty" json:"reserve_output,omitempty" jsonschema:"description=Tokens kept free for the answer (default 256)"`
	Keep          truncate.Keep        `toml:"keep,omitempty" yaml:"keep,omitempty" json:"keep,omitempty" jsonschema:"enum=start,enum=end"`
	TrimArgs      []string             `toml:"trim_args,omitempty" yaml:"trim_args,omitempty" json:"trim_args,omitempty" jsonschema:"description=Arguments to shorten when the prompt is too long"`
	ArrayPriority budget.ArrayPriority `toml:"array_priority,omitempty" yaml:"array_priority,omitempty" json:"array_priority,omitempty" jsonschema:"enum=first,enum=last,enum=equal"`
}

// MergeDefaults fills every unset field of o from other.
func (o *Options) MergeDefaults(other Options) {
	updateString(&o.Model, other.Model)
	updateString(&o.Host, other.Host)
	updatePtr(&o.Temperature, other.Temperature)
	updatePtr(&o.TopP, other.TopP)
	updatePtr(&o.TopK, other.TopK)
	updatePtr(&o.FrequencyPenalty, other.FrequencyPenalty)
	updatePtr(&o.PresencePenalty, other.PresencePenalty)
	updatePtr(&o.MaxTokens, other.MaxTokens)
	if o.Stop == nil {
		o.Stop = other.Stop
	}
	if o.Format == "" {
		o.Format = other.Format
	}
	o.Context.MergeDefaults(other.Context)
}

// MergeDefaults fills every unset field of c from other.
func (c *ContextInput) MergeDefaults(other ContextInput) {
	updatePtr(&c.Limit, other.Limit)
	updatePtr(&c.ReserveOutput, other.ReserveOutput)
	if c.Keep == "" {
		c.Keep = other.Keep
	}
	if len(c.TrimArgs) == 0 {
		c.TrimArgs = other.TrimArgs
	}
	if c.ArrayPriority == "" {
		c.ArrayPriority = other.ArrayPriority
	}
}

// Resolve returns concrete context options, using the defaults for
// anything left unset.
func (c ContextInput) Resolve() budget.ContextOptions {
	opts := budget.DefaultContextOptions()
	if c.Limit != nil {
		limit := *c.Limit
		opts.Limit = &limit
	}
	if c.ReserveOutput != nil {
		opts.ReserveOutput = *c.ReserveOutput
	}
	if c.Keep != "" {
		opts.Keep = c.Keep
	}
	if len(c.TrimArgs) > 0 {
		opts.TrimArgs = append([]string(nil), c.TrimArgs...)
	}
	if c.ArrayPriority != "" {
		opts.ArrayPriority = c.ArrayPriority
	}
	return opts
}

// Validate reports out-of-range values.
func (o Options) Validate() error {
	var errs []string
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		errs = append(errs, fmt.Sprintf("temperature %v out of range [0, 2]", *o.Temperature))
	}
	if o.TopP != nil && (*o.TopP < 0 || *o.TopP > 1) {
		errs = append(errs, fmt.Sprintf("top_p %v out of range [0, 1]", *o.TopP))
	}
	if o.TopK != nil && *o.TopK < 0 {
		errs = append(errs, fmt.Sprintf("top_k %d is negative", *o.TopK))
	}
	if o.MaxTokens != nil && *o.MaxTokens <= 0 {
		errs = append(errs, fmt.Sprintf("max_tokens %d must be positive", *o.MaxTokens))
	}
	if o.Format != FormatText && o.Format != FormatJSON {
		errs = append(errs, fmt.Sprintf("unknown format %q", o.Format))
	}
	if err := o.Context.Resolve().Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(errs, "; "))
	}
	return nil
}

// TemperatureOr returns the temperature, or def when unset.
func (o Options) TemperatureOr(def float64) float64 {
	if o.Temperature == nil {
		return def
	}
	return *o.Temperature
}

func updateString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

func updatePtr[T any](dst **T, src *T) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}
