package budget

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/promptbox/tokens"
	"github.com/randalmurphal/promptbox/truncate"
)

// RenderFunc renders the template with the given arguments.
type RenderFunc func(args map[string]any) (string, error)

// AllowedInput returns the number of tokens a prompt may use.
//
// The context size is the smaller of contextSize and opts.Limit; a
// contextSize of 0 means the host reports no size. Returns 0 and no error when
// neither gives a size, meaning nothing needs enforcing. Returns a
// *LimitError when ReserveOutput uses up the whole context, and
// ErrInvalidOptions when it is negative.
func AllowedInput(contextSize int, opts ContextOptions) (int, error) {
	if opts.ReserveOutput < 0 {
		return 0, fmt.Errorf("%w: reserve_output must be >= 0, got %d", ErrInvalidOptions, opts.ReserveOutput)
	}

	size := contextSize
	if opts.Limit != nil && (size <= 0 || *opts.Limit < size) {
		size = *opts.Limit
	}
	if size <= 0 {
		return 0, nil
	}

	allowed := size - opts.ReserveOutput
	if allowed <= 0 {
		return 0, &LimitError{ContextSize: size, ReserveOutput: opts.ReserveOutput}
	}
	return allowed, nil
}

// Enforcer fits rendered prompts into a context window.
// It holds no per-call state and is safe for concurrent use when its
// tokenizer is.
type Enforcer struct {
	tokenizer tokens.Tokenizer
	logger    *slog.Logger
}

// EnforcerOption configures an Enforcer.
type EnforcerOption func(*Enforcer)

// WithLogger sets the logger used for trimming diagnostics.
func WithLogger(logger *slog.Logger) EnforcerOption {
	return func(e *Enforcer) {
		e.logger = logger
	}
}

// NewEnforcer creates an Enforcer that measures prompts with tok.
func NewEnforcer(tok tokens.Tokenizer, opts ...EnforcerOption) *Enforcer {
	e := &Enforcer{
		tokenizer: tok,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enforce returns rendered, shortened if needed to fit the input budget.
//
// Prompts within budget come back unchanged. Otherwise, with no TrimArgs,
// the rendered text is truncated directly. With TrimArgs, the listed
// arguments are trimmed by the excess and render is called with the result;
// that output is returned without being measured again.
func (e *Enforcer) Enforce(contextSize int, opts ContextOptions, rendered string, args Args, render RenderFunc) (string, error) {
	out, _, err := e.Fit(contextSize, opts, rendered, args, render)
	return out, err
}

// Fit is Enforce that also returns the arguments the prompt was rendered
// with. They are args itself unless TrimArgs were trimmed, so callers can
// render companion text such as a system prompt from the same values.
func (e *Enforcer) Fit(contextSize int, opts ContextOptions, rendered string, args Args, render RenderFunc) (string, Args, error) {
	if err := opts.Validate(); err != nil {
		return "", nil, err
	}

	allowed, err := AllowedInput(contextSize, opts)
	if err != nil {
		return "", nil, err
	}
	if allowed == 0 {
		return rendered, args, nil
	}

	enc, err := e.tokenizer.Encode(rendered)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrTokenizer, err)
	}
	if enc.Len() <= allowed {
		e.logger.Debug("prompt within context budget",
			slog.Int("tokens", enc.Len()),
			slog.Int("allowed", allowed))
		return rendered, args, nil
	}

	if len(opts.TrimArgs) == 0 {
		e.logger.Debug("truncating rendered prompt",
			slog.Int("tokens", enc.Len()),
			slog.Int("allowed", allowed),
			slog.String("keep", opts.Keep.String()))
		return truncate.At(allowed, opts.Keep, rendered, enc), args, nil
	}

	toTrim := enc.Len() - allowed
	trimmed, removed, err := NewTrimmer(e.tokenizer, opts).Distribute(toTrim, args)
	if err != nil {
		return "", nil, err
	}

	if removed < toTrim {
		e.logger.Warn("trim arguments exhausted before prompt fit the context",
			slog.Int("excess", toTrim),
			slog.Int("removed", removed),
			slog.Any("trim_args", opts.TrimArgs))
	} else {
		e.logger.Debug("trimmed arguments",
			slog.Int("removed", removed),
			slog.Any("trim_args", opts.TrimArgs))
	}

	out, err := render(trimmed.Map())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return out, trimmed, nil
}
