package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/randalmurphal/promptbox/config"
	"github.com/randalmurphal/promptbox/prompt"
	"github.com/randalmurphal/promptbox/tokens"
)

// app holds the state shared by all commands: persistent flag values and
// what is built from them.
type app struct {
	dir       string
	tokenizer string
	logLevel  string
	logFormat string

	logger *slog.Logger
}

// setup builds the logger. Commands call it once their flags are parsed.
func (a *app) setup(errOut io.Writer) {
	cfg := logConfigFromEnv()
	cfg.Output = errOut
	if a.logLevel != "" {
		cfg.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Format = logFormat(strings.ToLower(a.logFormat))
	}
	a.logger = newLogger(cfg)
	slog.SetDefault(a.logger)
}

// loadConfig reads .env files and the config hierarchy.
func (a *app) loadConfig() (*config.Config, error) {
	dir := a.dir
	if dir == "" {
		dir = "."
	}
	globals := config.GlobalDirs()
	config.LoadDotenv(dir, globals)
	return config.Loader{Dir: dir, GlobalDirs: globals}.Load()
}

// newTokenizer builds the tokenizer named by --tokenizer.
func (a *app) newTokenizer() (tokens.Tokenizer, error) {
	switch name := strings.ToLower(strings.TrimSpace(a.tokenizer)); name {
	case "words":
		return tokens.NewWords(), nil
	case "approx":
		return tokens.NewApprox(tokens.DefaultRunesPerToken), nil
	case "", "tiktoken":
		return tokens.NewTiktoken(tokens.DefaultEncoding)
	default:
		tok, err := tokens.NewTiktoken(name)
		if err != nil {
			return nil, fmt.Errorf("tokenizer %q: %w", a.tokenizer, err)
		}
		return tok, nil
	}
}

// newRunner loads config and builds a prompt runner.
func (a *app) newRunner() (*prompt.Runner, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	tok, err := a.newTokenizer()
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded config", slog.Any("files", cfg.Files), slog.Any("template_dirs", cfg.TemplateDirs))
	return prompt.New(cfg, prompt.WithLogger(a.logger), prompt.WithTokenizer(tok)), nil
}
