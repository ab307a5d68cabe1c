package host

import (
	"errors"
	"fmt"
)

// Sentinel errors for host operations.
var (
	// ErrUnknownHost indicates no protocol is registered under the name.
	ErrUnknownHost = errors.New("unknown host")

	// ErrModelNotFound indicates the host does not serve the model.
	ErrModelNotFound = errors.New("model not found")

	// ErrRateLimited indicates the host answered 429 Too Many Requests.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the host could not be reached or failed.
	ErrUnavailable = errors.New("host unavailable")

	// ErrCredentialsNotFound indicates the API key is missing or rejected.
	ErrCredentialsNotFound = errors.New("credentials not found")

	// ErrInvalidRequest indicates the host rejected the request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid host config")
)

// Error wraps host errors with context.
type Error struct {
	Host      string // Host name ("openai", "ollama", ...)
	Op        string // Operation that failed ("context_limit", "send")
	Err       error  // Underlying error
	Retryable bool   // Whether the error is likely transient
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("%s %s: %v", e.Host, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new host error.
func NewError(host, op string, err error, retryable bool) *Error {
	return &Error{
		Host:      host,
		Op:        op,
		Err:       err,
		Retryable: retryable,
	}
}

// IsRetryable checks if an error is likely transient and worth retrying.
func IsRetryable(err error) bool {
	var hostErr *Error
	if errors.As(err, &hostErr) {
		return hostErr.Retryable
	}
	return errors.Is(err, ErrRateLimited)
}

// IsAuthError checks if an error is authentication-related.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrCredentialsNotFound)
}

// statusError maps an HTTP status code to a sentinel.
// Only 429 is retried.
func statusError(code int, body string) (error, bool) {
	var sentinel error
	switch {
	case code == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, body), true
	case code == 401 || code == 403:
		sentinel = ErrCredentialsNotFound
	case code == 404:
		sentinel = ErrModelNotFound
	case code >= 400 && code < 500:
		sentinel = ErrInvalidRequest
	default:
		sentinel = ErrUnavailable
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, code, body), false
}
