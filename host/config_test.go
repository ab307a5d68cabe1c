package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("PB_TEST_KEY", "from-env")
	t.Setenv("PB_DEFAULT_KEY", "from-default")

	assert.Equal(t, "literal", Config{APIKey: "literal", APIKeyEnv: "PB_TEST_KEY"}.ResolveAPIKey("PB_DEFAULT_KEY"))
	assert.Equal(t, "from-env", Config{APIKeyEnv: "PB_TEST_KEY"}.ResolveAPIKey("PB_DEFAULT_KEY"))
	assert.Equal(t, "from-default", Config{}.ResolveAPIKey("PB_DEFAULT_KEY"))
	assert.Equal(t, "", Config{}.ResolveAPIKey(""))
}

func TestContextLimited(t *testing.T) {
	off := false
	assert.True(t, Config{}.ContextLimited(true))
	assert.False(t, Config{}.ContextLimited(false))
	assert.False(t, Config{LimitContext: &off}.ContextLimited(true))
}

func TestConfigMergeDefaults(t *testing.T) {
	on := true
	cfg := Config{Endpoint: "http://mine", MaxRetries: 2}
	cfg.MergeDefaults(Config{
		Protocol:      "ollama",
		Endpoint:      "http://default",
		LimitContext:  &on,
		MaxRetries:    7,
		RetryInterval: time.Millisecond,
	})

	assert.Equal(t, "ollama", cfg.Protocol)
	assert.Equal(t, "http://mine", cfg.Endpoint)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, time.Millisecond, cfg.RetryInterval)
	if assert.NotNil(t, cfg.LimitContext) {
		assert.True(t, *cfg.LimitContext)
		assert.NotSame(t, &on, cfg.LimitContext)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero", cfg: Config{}},
		{name: "negative timeout", cfg: Config{Timeout: -time.Second}, wantErr: true},
		{name: "negative retries", cfg: Config{MaxRetries: -1}, wantErr: true},
		{name: "negative interval", cfg: Config{RetryInterval: -1}, wantErr: true},
		{name: "negative rate", cfg: Config{RequestsPerMinute: -5}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProtocolName(t *testing.T) {
	assert.Equal(t, "ollama", Config{Name: "ollama"}.ProtocolName())
	assert.Equal(t, "openai", Config{Name: "azure", Protocol: "openai"}.ProtocolName())
}
