package template

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/randalmurphal/promptbox/tokens"
)

// Engine renders prompt templates with variable substitution.
// It supports both Go template syntax and Handlebars-like syntax.
type Engine struct {
	funcs     template.FuncMap
	tokenizer tokens.Tokenizer
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTokenizer sets the tokenizer used by the truncate and tokens helpers.
// Defaults to tokens.Words.
func WithTokenizer(tok tokens.Tokenizer) EngineOption {
	return func(e *Engine) {
		e.tokenizer = tok
	}
}

// NewEngine creates a new template engine with default helper functions.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{tokenizer: tokens.NewWords()}
	for _, opt := range opts {
		opt(e)
	}
	e.funcs = e.defaultFuncs()
	return e
}

// Compiled is a parsed template that can be executed many times.
type Compiled struct {
	name string
	tmpl *template.Template
}

// Compile parses templateStr once so it can be rendered again after its
// arguments change.
func (e *Engine) Compile(name, templateStr string) (*Compiled, error) {
	if templateStr == "" {
		return nil, ErrEmpty
	}

	tmpl, err := template.New(name).Funcs(e.funcs).Parse(e.convertSyntax(templateStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &Compiled{name: name, tmpl: tmpl}, nil
}

// Name returns the name given to Compile.
func (c *Compiled) Name() string {
	return c.name
}

// Execute renders the template with the given variables.
func (c *Compiled) Execute(variables map[string]any) (string, error) {
	var buf strings.Builder
	if err := c.tmpl.Execute(&buf, variables); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}
	return buf.String(), nil
}

// Render parses and executes templateStr in one step.
func (e *Engine) Render(templateStr string, variables map[string]any) (string, error) {
	c, err := e.Compile("prompt", templateStr)
	if err != nil {
		return "", err
	}
	return c.Execute(variables)
}

// Parse validates the template and extracts variable names.
func (e *Engine) Parse(templateStr string) ([]string, error) {
	if _, err := e.Compile("prompt", templateStr); err != nil {
		return nil, err
	}
	return extractVariables(templateStr), nil
}

// AddFunc adds a custom template function.
// Handlebars-style calls such as {{name arg}} work for it as well.
func (e *Engine) AddFunc(name string, fn any) {
	e.funcs[name] = fn
}

// ValidateVariables checks that all required variables are provided.
func ValidateVariables(required []string, provided map[string]any) error {
	for _, name := range required {
		if _, ok := provided[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}
