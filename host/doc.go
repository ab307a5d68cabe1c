// Package host talks to the servers that run language models.
//
// A Host reports the context size of a model and accepts rendered prompts.
// Implementations register themselves by protocol name so configuration can
// pick one:
//
//	h, err := host.New("ollama", host.Config{})
//	size, err := h.ContextLimit(ctx, "llama3")
//	resp, err := host.Collect(h.Send(ctx, host.Request{Model: "llama3", Prompt: p}))
//
// Built-in protocols are openai, lm-studio, ollama and together.
package host
