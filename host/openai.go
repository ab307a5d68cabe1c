package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/randalmurphal/promptbox/model"
)

const (
	// OpenAIEndpoint is the default OpenAI API base URL.
	OpenAIEndpoint = "https://api.openai.com/v1"
	// LMStudioEndpoint is the default LM Studio server base URL.
	LMStudioEndpoint = "http://localhost:1234/v1"

	openAIKeyEnv = "OPENAI_API_KEY"
	userTag      = "promptbox"
)

func init() {
	Register("openai", func(cfg Config) (Host, error) {
		cfg.MergeDefaults(Config{Endpoint: OpenAIEndpoint, APIKeyEnv: openAIKeyEnv})
		return NewOpenAI(cfg, true)
	})
	Register("lm-studio", func(cfg Config) (Host, error) {
		cfg.MergeDefaults(Config{Endpoint: LMStudioEndpoint})
		return NewOpenAI(cfg, false)
	})
}

// OpenAI is a host speaking the OpenAI chat completions protocol.
type OpenAI struct {
	name         string
	client       *openai.Client
	transport    *transport
	limitContext bool
}

// NewOpenAI creates an OpenAI-protocol host. limitByDefault selects whether
// the built-in context table applies when the config leaves limit_context
// unset; servers such as LM Studio size the context themselves.
func NewOpenAI(cfg Config, limitByDefault bool) (*OpenAI, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = OpenAIEndpoint
	}
	t := newTransport(cfg)

	clientCfg := openai.DefaultConfig(cfg.ResolveAPIKey(""))
	clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	clientCfg.HTTPClient = t.client

	return &OpenAI{
		name:         cfg.Name,
		client:       openai.NewClientWithConfig(clientCfg),
		transport:    t,
		limitContext: cfg.ContextLimited(limitByDefault),
	}, nil
}

// Name returns the host name.
func (h *OpenAI) Name() string {
	return h.name
}

// ContextLimit returns the context size of an OpenAI model from a static
// table, or 0 when the host does not limit contexts.
func (h *OpenAI) ContextLimit(_ context.Context, model string) (int, error) {
	if !h.limitContext {
		return 0, nil
	}
	return OpenAIContextLimit(model), nil
}

// OpenAIContextLimit returns the context window of an OpenAI model.
// Unknown models get the smallest window.
func OpenAIContextLimit(model string) int {
	switch {
	case strings.HasPrefix(model, "gpt-4o"), strings.HasPrefix(model, "gpt-4-turbo"):
		return 128000
	case strings.HasPrefix(model, "gpt-4"):
		if strings.Contains(model, "-32k") {
			return 32768
		}
		if strings.Contains(model, "-preview") {
			return 128000
		}
		return 8192
	case model == "gpt-3.5-turbo-1106", strings.Contains(model, "-16k"):
		return 16385
	default:
		return 4096
	}
}

// Send streams a chat completion.
func (h *OpenAI) Send(ctx context.Context, req Request) (<-chan Chunk, error) {
	chatReq := h.buildRequest(req)

	stream, err := retry(ctx, h.transport, "send", func() (*openai.ChatCompletionStream, error) {
		s, err := h.client.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			return nil, h.wrapError("send", err)
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan Chunk, 16)
	go func() {
		defer close(ch)
		defer func() { _ = stream.Close() }()

		var usage *model.Usage
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				send(ctx, ch, Chunk{Usage: usage, Done: true})
				return
			}
			if err != nil {
				send(ctx, ch, Chunk{Err: h.wrapError("send", err)})
				return
			}

			if resp.Usage != nil {
				usage = &model.Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					Requests:         1,
				}
			}
			for _, choice := range resp.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !send(ctx, ch, Chunk{Content: choice.Delta.Content}) {
					return
				}
			}
		}
	}()

	return ch, nil
}

func (h *OpenAI) buildRequest(req Request) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	opts := req.Options
	chatReq := openai.ChatCompletionRequest{
		Model:            req.Model,
		Messages:         messages,
		Temperature:      float32(opts.TemperatureOr(0)),
		TopP:             float32Of(opts.TopP),
		FrequencyPenalty: float32Of(opts.FrequencyPenalty),
		PresencePenalty:  float32Of(opts.PresencePenalty),
		Stop:             opts.Stop,
		User:             userTag,
		Stream:           true,
		StreamOptions:    &openai.StreamOptions{IncludeUsage: true},
	}
	if opts.MaxTokens != nil {
		chatReq.MaxTokens = *opts.MaxTokens
	}
	if opts.Format == model.FormatJSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return chatReq
}

// wrapError maps go-openai errors onto host sentinels.
func (h *OpenAI) wrapError(op string, err error) error {
	return wrapOpenAIError(h.name, op, err)
}

func wrapOpenAIError(name, op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		mapped, retryable := statusError(apiErr.HTTPStatusCode, apiErr.Message)
		return NewError(name, op, mapped, retryable)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		mapped, retryable := statusError(reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode))
		return NewError(name, op, mapped, retryable)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(name, op, err, false)
	}
	return NewError(name, op, fmt.Errorf("%w: %w", ErrUnavailable, err), false)
}

func float32Of(p *float64) float32 {
	if p == nil {
		return 0
	}
	return float32(*p)
}
