package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/randalmurphal/promptbox/model"
)

const (
	// OllamaEndpoint is the default Ollama server address.
	OllamaEndpoint = "http://localhost:11434"

	// ollamaDefaultContext applies when the modelfile does not set num_ctx.
	ollamaDefaultContext = 2048
)

func init() {
	Register("ollama", func(cfg Config) (Host, error) {
		return NewOllama(cfg), nil
	})
}

// Ollama is a host backed by an Ollama server.
type Ollama struct {
	name         string
	endpoint     string
	transport    *transport
	limitContext bool
}

// NewOllama creates an Ollama host.
func NewOllama(cfg Config) *Ollama {
	cfg.MergeDefaults(Config{Endpoint: OllamaEndpoint})
	return &Ollama{
		name:         cfg.Name,
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		transport:    newTransport(cfg),
		limitContext: cfg.ContextLimited(true),
	}
}

// Name returns the host name.
func (h *Ollama) Name() string {
	return h.name
}

type ollamaShowResponse struct {
	Modelfile  string `json:"modelfile"`
	Parameters string `json:"parameters"`
	Template   string `json:"template"`
}

// ContextLimit reads num_ctx from the model's parameters.
func (h *Ollama) ContextLimit(ctx context.Context, model string) (int, error) {
	if !h.limitContext {
		return 0, nil
	}

	var info ollamaShowResponse
	err := h.transport.getJSON(ctx, "context_limit", http.MethodPost, h.endpoint+"/api/show",
		map[string]string{"name": model}, nil, &info)
	if err != nil {
		return 0, err
	}

	n, err := parseNumCtx(info.Parameters)
	if err != nil {
		return 0, NewError(h.name, "context_limit", err, false)
	}
	return n, nil
}

// parseNumCtx finds the num_ctx line in an Ollama parameters listing.
func parseNumCtx(params string) (int, error) {
	for _, line := range strings.Split(params, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "num_ctx" {
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("%w: num_ctx %q: %w", ErrUnavailable, fields[1], err)
		}
		return n, nil
	}
	return ollamaDefaultContext, nil
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature   float64  `json:"temperature"`
	TopP          *float64 `json:"top_p,omitempty"`
	TopK          *int     `json:"top_k,omitempty"`
	RepeatPenalty *float64 `json:"repeat_penalty,omitempty"`
	NumPredict    *int     `json:"num_predict,omitempty"`
	Stop          []string `json:"stop,omitempty"`
}

type ollamaGenerateResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	Error           string `json:"error,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// Send streams a generation from /api/generate.
func (h *Ollama) Send(ctx context.Context, req Request) (<-chan Chunk, error) {
	opts := req.Options
	body := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.System,
		Format: string(opts.Format),
		Stream: true,
		Options: ollamaOptions{
			Temperature:   opts.TemperatureOr(0),
			TopP:          opts.TopP,
			TopK:          opts.TopK,
			RepeatPenalty: opts.FrequencyPenalty,
			NumPredict:    opts.MaxTokens,
			Stop:          opts.Stop,
		},
	}

	resp, err := h.transport.do(ctx, "send", http.MethodPost, h.endpoint+"/api/generate", body, nil)
	if err != nil {
		return nil, err
	}

	ch := make(chan Chunk, 16)
	go func() {
		defer close(ch)
		defer func() { _ = resp.Body.Close() }()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk ollamaGenerateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				send(ctx, ch, Chunk{Err: NewError(h.name, "send", fmt.Errorf("%w: decode chunk: %w", ErrUnavailable, err), false)})
				return
			}
			if chunk.Error != "" {
				send(ctx, ch, Chunk{Err: NewError(h.name, "send", fmt.Errorf("%w: %s", ErrUnavailable, chunk.Error), false)})
				return
			}

			out := Chunk{Content: chunk.Response, Done: chunk.Done}
			if chunk.Done {
				out.Usage = &model.Usage{
					PromptTokens:     chunk.PromptEvalCount,
					CompletionTokens: chunk.EvalCount,
					Requests:         1,
				}
			}
			if !send(ctx, ch, out) || chunk.Done {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			send(ctx, ch, Chunk{Err: NewError(h.name, "send", fmt.Errorf("read stream: %w", err), false)})
			return
		}
		send(ctx, ch, Chunk{Done: true})
	}()

	return ch, nil
}
