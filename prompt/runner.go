// Package prompt runs a template invocation end to end: it finds the
// template, merges model options, renders, fits the prompt into the host's
// context window and sends it.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/promptbox/budget"
	"github.com/randalmurphal/promptbox/config"
	"github.com/randalmurphal/promptbox/host"
	"github.com/randalmurphal/promptbox/model"
	"github.com/randalmurphal/promptbox/template"
	"github.com/randalmurphal/promptbox/tokens"
)

// ErrNoModel is returned by Send when no layer names a model.
var ErrNoModel = errors.New("no model configured")

// Request is one template invocation.
type Request struct {
	// Template is a template name or a path to a template file.
	Template string
	// Args holds the raw values given for each template option.
	Args map[string][]string
	// Options override the template's and the config's model options.
	Options model.Options
	// Pre and Post are joined before and after the template text.
	Pre, Post string
}

// Prepared is a rendered prompt ready to send.
type Prepared struct {
	File        *template.File
	Spec        model.Spec
	Options     model.Options
	Context     budget.ContextOptions
	ContextSize int
	Host        host.Host // nil when no model is named
	Prompt      string
	System      string
	Tokens      int
}

// Runner turns requests into prompts. It is safe for concurrent use.
type Runner struct {
	config    *config.Config
	library   *template.Library
	engine    *template.Engine
	tokenizer tokens.Tokenizer
	enforcer  *budget.Enforcer
	logger    *slog.Logger
	newHost   func(name string) (host.Host, error)
	usage     *model.UsageTracker
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithTokenizer sets the tokenizer that measures prompts.
// Defaults to tokens.Words.
func WithTokenizer(tok tokens.Tokenizer) Option {
	return func(r *Runner) {
		r.tokenizer = tok
	}
}

// WithLibrary replaces the template library built from the config.
func WithLibrary(lib *template.Library) Option {
	return func(r *Runner) {
		r.library = lib
	}
}

// WithHostFactory replaces how hosts are built from their names.
func WithHostFactory(fn func(name string) (host.Host, error)) Option {
	return func(r *Runner) {
		r.newHost = fn
	}
}

// New creates a Runner for cfg.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		config:    cfg,
		tokenizer: tokens.NewWords(),
		logger:    slog.Default(),
		newHost:   cfg.NewHost,
		usage:     model.NewUsageTracker(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.library == nil {
		r.library = template.NewLibrary(cfg.TemplateDirs, template.WithLogger(r.logger))
	}
	r.engine = template.NewEngine(template.WithTokenizer(r.tokenizer))
	r.enforcer = budget.NewEnforcer(r.tokenizer, budget.WithLogger(r.logger))
	return r
}

// Library returns the template library.
func (r *Runner) Library() *template.Library {
	return r.library
}

// Usage returns the token usage recorded by Send.
func (r *Runner) Usage() *model.UsageTracker {
	return r.usage
}

// Prepare loads, renders and budgets the template named in req.
//
// Options merge in order of precedence: req.Options, the template's
// [model] table, then the config. The context size comes from the host
// serving the model; without a model only an explicit limit applies.
func (r *Runner) Prepare(ctx context.Context, req Request) (*Prepared, error) {
	file, err := r.library.Find(req.Template)
	if err != nil {
		return nil, err
	}

	args, err := file.Arguments(req.Args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	opts := req.Options
	opts.MergeDefaults(file.Model)
	opts.MergeDefaults(r.config.Model)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Prepared{
		File:    file,
		Spec:    r.config.Spec(opts),
		Options: opts,
		Context: opts.Context.Resolve(),
	}
	if err := p.Context.Validate(); err != nil {
		return nil, err
	}

	if p.Spec.Model != "" {
		p.Host, err = r.newHost(p.Spec.Host)
		if err != nil {
			return nil, err
		}
		p.ContextSize, err = p.Host.ContextLimit(ctx, p.Spec.Model)
		if err != nil {
			return nil, err
		}
	}

	compiled, err := r.engine.Compile(file.Name, file.Prompt(req.Pre, req.Post))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}
	rendered, err := compiled.Execute(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	var fitted budget.Args
	p.Prompt, fitted, err = r.enforcer.Fit(p.ContextSize, p.Context, rendered, budget.ArgsFromMap(args), compiled.Execute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	// The system prompt sees the same trimmed values as the prompt.
	if file.System != "" {
		p.System, err = r.engine.Render(file.System, fitted.Map())
		if err != nil {
			return nil, fmt.Errorf("%s: system: %w", file.Name, err)
		}
	}

	enc, err := r.tokenizer.Encode(p.Prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", budget.ErrTokenizer, err)
	}
	p.Tokens = enc.Len()

	r.logger.Debug("prepared prompt",
		slog.String("template", file.Name),
		slog.String("model", p.Spec.String()),
		slog.Int("context_size", p.ContextSize),
		slog.Int("tokens", p.Tokens))
	return p, nil
}

// Send submits a prepared prompt and streams the answer. Usage reported by
// the host is added to the runner's tracker.
func (r *Runner) Send(ctx context.Context, p *Prepared) (<-chan host.Chunk, error) {
	if p.Host == nil {
		return nil, ErrNoModel
	}

	in, err := p.Host.Send(ctx, host.Request{
		Model:   p.Spec.Model,
		Prompt:  p.Prompt,
		System:  p.System,
		Options: p.Options,
	})
	if err != nil {
		return nil, err
	}

	out := make(chan host.Chunk)
	go func() {
		defer close(out)
		for chunk := range in {
			if chunk.Usage != nil {
				r.usage.Record(p.Spec, *chunk.Usage)
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				// Drain so the host's goroutine can finish.
				for range in {
				}
				return
			}
		}
	}()
	return out, nil
}
