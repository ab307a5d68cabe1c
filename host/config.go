package host

import (
	"fmt"
	"os"
	"time"
)

// Config holds configuration for creating a Host.
// Zero values take the protocol's default.
type Config struct {
	// Name is the key the host is configured under. Filled from the
	// config map key, never read from the file itself.
	Name string `toml:"-" yaml:"-" json:"-"`

	// Protocol selects the registered implementation.
	// Default: the host name. Values: "openai", "lm-studio", "ollama", "together"
	Protocol string `toml:"protocol,omitempty" yaml:"protocol,omitempty" json:"protocol,omitempty"`

	// Endpoint is the base URL of the host API.
	Endpoint string `toml:"endpoint,omitempty" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`

	// APIKey is the literal key. Prefer APIKeyEnv.
	APIKey string `toml:"api_key,omitempty" yaml:"api_key,omitempty" json:"api_key,omitempty"`

	// APIKeyEnv names the environment variable holding the key.
	APIKeyEnv string `toml:"api_key_env,omitempty" yaml:"api_key_env,omitempty" json:"api_key_env,omitempty"`

	// LimitContext controls whether the host reports a context size.
	// Off means ContextLimit returns 0 and only explicit limits apply.
	LimitContext *bool `toml:"limit_context,omitempty" yaml:"limit_context,omitempty" json:"limit_context,omitempty"`

	// Timeout bounds a single HTTP request. 0 means no timeout.
	Timeout time.Duration `toml:"timeout,omitempty" yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// MaxRetries bounds attempts on rate-limited requests.
	// Default: 4.
	MaxRetries int `toml:"max_retries,omitempty" yaml:"max_retries,omitempty" json:"max_retries,omitempty"`

	// RetryInterval is the first backoff delay. Default: 1s.
	RetryInterval time.Duration `toml:"retry_interval,omitempty" yaml:"retry_interval,omitempty" json:"retry_interval,omitempty"`

	// RequestsPerMinute throttles outgoing requests. 0 means unthrottled.
	RequestsPerMinute float64 `toml:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty" json:"requests_per_minute,omitempty"`

	// CacheDir holds cached model metadata.
	// Default: the user cache directory plus "promptbox".
	CacheDir string `toml:"cache_dir,omitempty" yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
}

const (
	defaultMaxRetries    = 4
	defaultRetryInterval = time.Second
)

// ProtocolName returns the protocol to build, falling back to the host name.
func (c Config) ProtocolName() string {
	if c.Protocol != "" {
		return c.Protocol
	}
	return c.Name
}

// ResolveAPIKey returns the API key, reading APIKeyEnv or else defaultEnv.
func (c Config) ResolveAPIKey(defaultEnv string) string {
	if c.APIKey != "" {
		return c.APIKey
	}
	env := c.APIKeyEnv
	if env == "" {
		env = defaultEnv
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// ContextLimited reports whether the host should report context sizes.
func (c Config) ContextLimited(def bool) bool {
	if c.LimitContext == nil {
		return def
	}
	return *c.LimitContext
}

// MergeDefaults fills every unset field of c from other.
func (c *Config) MergeDefaults(other Config) {
	if c.Protocol == "" {
		c.Protocol = other.Protocol
	}
	if c.Endpoint == "" {
		c.Endpoint = other.Endpoint
	}
	if c.APIKey == "" {
		c.APIKey = other.APIKey
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = other.APIKeyEnv
	}
	if c.LimitContext == nil && other.LimitContext != nil {
		v := *other.LimitContext
		c.LimitContext = &v
	}
	if c.Timeout == 0 {
		c.Timeout = other.Timeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = other.MaxRetries
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = other.RetryInterval
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = other.RequestsPerMinute
	}
	if c.CacheDir == "" {
		c.CacheDir = other.CacheDir
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0, got %v", ErrInvalidConfig, c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("%w: retry_interval must be >= 0, got %v", ErrInvalidConfig, c.RetryInterval)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: requests_per_minute must be >= 0, got %v", ErrInvalidConfig, c.RequestsPerMinute)
	}
	return nil
}

func (c Config) maxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return defaultMaxRetries
}

func (c Config) retryInterval() time.Duration {
	if c.RetryInterval > 0 {
		return c.RetryInterval
	}
	return defaultRetryInterval
}
