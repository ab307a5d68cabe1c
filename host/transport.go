package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 4 << 10

// transport is the HTTP plumbing shared by the hosts: throttling, retries
// on 429 and status mapping.
type transport struct {
	name    string
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
}

func newTransport(cfg Config) *transport {
	t := &transport{
		name:   cfg.Name,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RequestsPerMinute > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), 1)
	}
	return t
}

// wait blocks until the throttle admits one more request.
func (t *transport) wait(ctx context.Context) error {
	if t.limiter == nil {
		return nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// retry runs fn until it succeeds, fails with a non-retryable error or
// runs out of attempts.
func retry[T any](ctx context.Context, t *transport, op string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.cfg.retryInterval()

	return backoff.Retry(ctx, func() (T, error) {
		if err := t.wait(ctx); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		v, err := fn()
		if err != nil && !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(t.cfg.maxRetries())),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Debug("retrying host request",
				slog.String("host", t.name),
				slog.String("op", op),
				slog.Duration("backoff", next),
				slog.Any("error", err))
		}),
	)
}

// do sends one request, retrying on 429. A non-2xx answer becomes an *Error;
// on success the caller owns the response body.
func (t *transport) do(ctx context.Context, op, method, url string, body any, header http.Header) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, NewError(t.name, op, fmt.Errorf("%w: encode body: %w", ErrInvalidRequest, err), false)
		}
	}

	return retry(ctx, t, op, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, NewError(t.name, op, fmt.Errorf("%w: %w", ErrInvalidRequest, err), false)
		}
		for k, v := range header {
			req.Header[k] = v
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := t.client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, NewError(t.name, op, ctxErr, false)
			}
			return nil, NewError(t.name, op, fmt.Errorf("%w: %w", ErrUnavailable, err), false)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		defer func() { _ = resp.Body.Close() }()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr, retryable := statusError(resp.StatusCode, strings.TrimSpace(string(msg)))
		return nil, NewError(t.name, op, statusErr, retryable)
	})
}

// getJSON sends a request and decodes a JSON answer into out.
func (t *transport) getJSON(ctx context.Context, op, method, url string, body any, header http.Header, out any) error {
	resp, err := t.do(ctx, op, method, url, body, header)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return NewError(t.name, op, fmt.Errorf("%w: decode response: %w", ErrUnavailable, err), false)
	}
	return nil
}

func bearer(key string) http.Header {
	h := http.Header{}
	if key != "" {
		h.Set("Authorization", "Bearer "+key)
	}
	return h
}
