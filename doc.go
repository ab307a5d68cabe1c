// Package promptbox renders prompt templates and sends them to language
// model hosts without overflowing the model's context window.
//
// The work is split across subpackages that can be used on their own:
//
//   - tokens: tokenizers that report each token's byte span
//   - truncate: cut text to a token count, keeping its start or end
//   - budget: trim template arguments until a prompt fits its budget
//   - template: template files, the renderer and the template library
//   - model: model options and the host/model naming scheme
//   - host: Ollama, OpenAI, LM Studio and Together clients
//   - config: promptbox.toml discovery and environment overrides
//   - parser: pull JSON, YAML, code or sections out of an answer
//   - prompt: find, render, budget and send a template in one call
//
// # Quick Start
//
// Fitting arguments into a budget:
//
//	tok, _ := tokens.NewTiktoken(tokens.DefaultEncoding)
//	enforcer := budget.NewEnforcer(tok)
//	prompt, err := enforcer.Enforce(contextSize, opts, rendered, args, compiled.Execute)
//
// Running a template from the configured library:
//
//	cfg, _ := config.Load(".")
//	runner := prompt.New(cfg, prompt.WithTokenizer(tok))
//	p, err := runner.Prepare(ctx, prompt.Request{Template: "summarize", Args: args})
//	answer, err := host.Collect(runner.Send(ctx, p))
//
// The promptbox command in cmd/promptbox wraps the same flow.
package promptbox
