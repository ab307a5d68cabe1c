package host

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/randalmurphal/promptbox/model"
	"github.com/randalmurphal/promptbox/template"
)

const (
	// TogetherEndpoint is the default Together API address.
	TogetherEndpoint = "https://api.together.xyz"

	togetherKeyEnv         = "TOGETHER_API_KEY"
	togetherInfoCache      = "together_model_info.json"
	togetherInfoMaxStale   = 24 * time.Hour
	togetherDefaultContext = 2048
	togetherDefaultMaxOut  = 2048
)

func init() {
	Register("together", func(cfg Config) (Host, error) {
		return NewTogether(cfg)
	})
}

// Together is a host backed by the Together inference API.
type Together struct {
	name         string
	endpoint     string
	apiKey       string
	transport    *transport
	client       *openai.Client
	cache        *Cache
	engine       *template.Engine
	limitContext bool

	mu   sync.Mutex
	info []TogetherModelInfo
}

// TogetherModelInfo is one entry of the /models/info listing.
type TogetherModelInfo struct {
	Name          string                `json:"name"`
	ContextLength *int                  `json:"context_length,omitempty"`
	Config        TogetherModelTemplate `json:"config"`
}

// TogetherModelTemplate describes how a model expects its prompt.
type TogetherModelTemplate struct {
	ChatTemplateName string   `json:"chat_template_name,omitempty"`
	ChatTemplate     string   `json:"chat_template,omitempty"`
	PromptFormat     string   `json:"prompt_format,omitempty"`
	Stop             []string `json:"stop,omitempty"`
}

// NewTogether creates a Together host. Model metadata is cached on disk for
// a day; a cache that cannot be located is skipped.
func NewTogether(cfg Config) (*Together, error) {
	cfg.MergeDefaults(Config{Endpoint: TogetherEndpoint, APIKeyEnv: togetherKeyEnv})
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	apiKey := cfg.ResolveAPIKey("")
	t := newTransport(cfg)

	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = endpoint + "/v1"
	clientCfg.HTTPClient = t.client

	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		slog.Debug("model info cache disabled", slog.String("host", cfg.Name), slog.Any("error", err))
		cache = nil
	}

	return &Together{
		name:         cfg.Name,
		endpoint:     endpoint,
		apiKey:       apiKey,
		transport:    t,
		client:       openai.NewClientWithConfig(clientCfg),
		cache:        cache,
		engine:       template.NewEngine(),
		limitContext: cfg.ContextLimited(true),
	}, nil
}

// Name returns the host name.
func (h *Together) Name() string {
	return h.name
}

// ContextLimit returns the context_length Together reports for model.
func (h *Together) ContextLimit(ctx context.Context, model string) (int, error) {
	if !h.limitContext {
		return 0, nil
	}
	info, err := h.modelInfo(ctx, model)
	if err != nil {
		return 0, err
	}
	if info.ContextLength == nil {
		return togetherDefaultContext, nil
	}
	return *info.ContextLength, nil
}

// Send requests a completion. Together answers in one piece, so the
// stream carries a single content chunk.
func (h *Together) Send(ctx context.Context, req Request) (<-chan Chunk, error) {
	info, err := h.modelInfo(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	prompt, err := h.formatPrompt(info.Config, req.Prompt, req.System)
	if err != nil {
		return nil, NewError(h.name, "send", fmt.Errorf("%w: %w", ErrInvalidRequest, err), false)
	}

	opts := req.Options
	stop := append(append([]string(nil), opts.Stop...), info.Config.Stop...)
	maxTokens := togetherDefaultMaxOut
	if opts.MaxTokens != nil {
		maxTokens = *opts.MaxTokens
	}

	completion := openai.CompletionRequest{
		Model:            req.Model,
		Prompt:           prompt,
		MaxTokens:        maxTokens,
		Temperature:      float32(opts.TemperatureOr(0)),
		TopP:             float32Of(opts.TopP),
		FrequencyPenalty: float32Of(opts.FrequencyPenalty),
		PresencePenalty:  float32Of(opts.PresencePenalty),
		Stop:             stop,
		User:             userTag,
	}

	resp, err := retry(ctx, h.transport, "send", func() (openai.CompletionResponse, error) {
		r, err := h.client.CreateCompletion(ctx, completion)
		if err != nil {
			return r, wrapOpenAIError(h.name, "send", err)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	var text string
	if n := len(resp.Choices); n > 0 {
		text = resp.Choices[n-1].Text
	}

	ch := make(chan Chunk, 2)
	ch <- Chunk{Content: text}
	ch <- Chunk{
		Done: true,
		Usage: &model.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			Requests:         1,
		},
	}
	close(ch)
	return ch, nil
}

// formatPrompt shapes prompt and system the way the model was trained.
// Named chat formats go through the template engine; otherwise the system
// message is prepended and prompt_format, when present, wraps the result.
func (h *Together) formatPrompt(cfg TogetherModelTemplate, prompt, system string) (string, error) {
	if name := cfg.ChatTemplateName; name != "" && name != "default" {
		if format, ok := template.LookupChatFormat(name); ok {
			return h.engine.ApplyChat(format, prompt, system, true)
		}
		slog.Debug("unknown chat template, joining system prompt",
			slog.String("host", h.name),
			slog.String("chat_template", name))
	}

	if system != "" {
		prompt = system + "\n\n" + prompt
	}
	if cfg.PromptFormat != "" {
		return strings.ReplaceAll(cfg.PromptFormat, "{prompt}", prompt), nil
	}
	return prompt, nil
}

func (h *Together) modelInfo(ctx context.Context, model string) (TogetherModelInfo, error) {
	all, err := h.allModelInfo(ctx)
	if err != nil {
		return TogetherModelInfo{}, err
	}
	for _, info := range all {
		if info.Name == model {
			return info, nil
		}
	}
	return TogetherModelInfo{}, NewError(h.name, "model_info", fmt.Errorf("%w: %s", ErrModelNotFound, model), false)
}

// allModelInfo returns the model listing from memory, the disk cache or
// the API, in that order.
func (h *Together) allModelInfo(ctx context.Context) ([]TogetherModelInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.info != nil {
		return h.info, nil
	}

	if h.cache != nil {
		var cached []TogetherModelInfo
		ok, err := h.cache.Read(togetherInfoCache, togetherInfoMaxStale, &cached)
		if err != nil {
			slog.Debug("ignoring model info cache", slog.String("host", h.name), slog.Any("error", err))
		}
		if ok {
			h.info = cached
			return h.info, nil
		}
	}

	var info []TogetherModelInfo
	err := h.transport.getJSON(ctx, "model_info", http.MethodGet, h.endpoint+"/models/info", nil, bearer(h.apiKey), &info)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Write(togetherInfoCache, info); err != nil {
			slog.Debug("could not cache model info", slog.String("host", h.name), slog.Any("error", err))
		}
	}
	h.info = info
	return h.info, nil
}
