package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/promptbox/host"
	"github.com/randalmurphal/promptbox/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func mkdir(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvModel, EnvHost, EnvContextLimit, EnvReserveOutput, EnvTemplates} {
		t.Setenv(k, "")
	}
}

func TestLoadHierarchy(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	project := filepath.Join(root, "project")
	sub := filepath.Join(project, "sub")
	global := mkdir(t, filepath.Join(root, "global"))

	writeFile(t, filepath.Join(sub, "promptbox.toml"), `
[model]
model = "llama3"
temperature = 0.3

[model.context]
trim_args = ["body"]
`)
	writeFile(t, filepath.Join(project, "promptbox.toml"), `
default_host = "local"

[model]
model = "mistral"
top_k = 20

[model.context]
limit = 1000
keep = "end"

[host.local]
protocol = "ollama"
endpoint = "http://gpu:11434"
timeout = "30s"
`)
	writeFile(t, filepath.Join(global, "promptbox.yaml"), `
model:
  temperature: 0.9
  max_tokens: 400
host:
  local:
    endpoint: http://ignored
    max_retries: 2
`)
	mkdir(t, filepath.Join(sub, "promptbox"))
	mkdir(t, filepath.Join(project, "promptbox"))
	mkdir(t, filepath.Join(global, "templates"))

	cfg, err := Loader{Dir: sub, GlobalDirs: []string{global}}.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(sub, "promptbox.toml"),
		filepath.Join(project, "promptbox.toml"),
		filepath.Join(global, "promptbox.yaml"),
	}, cfg.Files)

	assert.Equal(t, "llama3", cfg.Model.Model, "nearest file wins")
	assert.Equal(t, 0.3, *cfg.Model.Temperature)
	assert.Equal(t, 20, *cfg.Model.TopK)
	assert.Equal(t, 400, *cfg.Model.MaxTokens)
	assert.Equal(t, []string{"body"}, cfg.Model.Context.TrimArgs)
	assert.Equal(t, 1000, *cfg.Model.Context.Limit)
	assert.EqualValues(t, "end", cfg.Model.Context.Keep)

	assert.Equal(t, "local", cfg.DefaultHost)
	local := cfg.Hosts["local"]
	assert.Equal(t, "local", local.Name)
	assert.Equal(t, "ollama", local.Protocol)
	assert.Equal(t, "http://gpu:11434", local.Endpoint)
	assert.Equal(t, 30*time.Second, local.Timeout)
	assert.Equal(t, 2, local.MaxRetries)

	assert.Equal(t, []string{
		filepath.Join(sub, "promptbox"),
		filepath.Join(project, "promptbox"),
		filepath.Join(global, "templates"),
	}, cfg.TemplateDirs)
}

func TestLoadExplicitTemplates(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "prompts"))
	writeFile(t, filepath.Join(root, "promptbox.toml"), `templates = ["prompts", "missing"]`)

	cfg, err := Loader{Dir: root, GlobalDirs: []string{}}.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "prompts")}, cfg.TemplateDirs)
}

func TestLoadGlobalWithoutFile(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	global := filepath.Join(root, "global")
	mkdir(t, filepath.Join(global, "templates"))

	cfg, err := Loader{Dir: mkdir(t, filepath.Join(root, "work")), GlobalDirs: []string{global}}.Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Files)
	assert.Equal(t, []string{filepath.Join(global, "templates")}, cfg.TemplateDirs)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	extra := mkdir(t, filepath.Join(root, "extra"))
	writeFile(t, filepath.Join(root, "promptbox.toml"), `
[model]
model = "llama3"
[model.context]
limit = 100
`)

	t.Setenv(EnvModel, "gpt-4")
	t.Setenv(EnvHost, "openai")
	t.Setenv(EnvContextLimit, "5000")
	t.Setenv(EnvReserveOutput, "64")
	t.Setenv(EnvTemplates, extra)

	cfg, err := Loader{Dir: root, GlobalDirs: []string{}}.Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.Model.Model)
	assert.Equal(t, "openai", cfg.DefaultHost)
	assert.Equal(t, 5000, *cfg.Model.Context.Limit)
	assert.Equal(t, 64, *cfg.Model.Context.ReserveOutput)
	assert.Equal(t, extra, cfg.TemplateDirs[0])
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		env     map[string]string
	}{
		{name: "unknown key", file: "promptbox.toml", content: "modle = 1"},
		{name: "bad toml", file: "promptbox.toml", content: "[model"},
		{name: "unknown yaml key", file: "promptbox.yaml", content: "hosts: {}"},
		{name: "bad temperature", file: "promptbox.toml", content: "[model]\ntemperature = 5.0"},
		{name: "unknown protocol", file: "promptbox.toml", content: "[host.x]\nprotocol = \"carrier-pigeon\""},
		{name: "unknown default host", file: "promptbox.toml", content: `default_host = "nowhere"`},
		{name: "bad env limit", file: "promptbox.toml", content: "", env: map[string]string{EnvContextLimit: "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			root := t.TempDir()
			writeFile(t, filepath.Join(root, tt.file), tt.content)

			_, err := Loader{Dir: root, GlobalDirs: []string{}}.Load()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestGlobalDirs(t *testing.T) {
	home := t.TempDir()
	xdg := filepath.Join(home, "xdg")
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Empty(t, GlobalDirs())

	mkdir(t, filepath.Join(xdg, "promptbox"))
	mkdir(t, filepath.Join(home, ".config", "promptbox"))
	assert.Equal(t, []string{
		filepath.Join(xdg, "promptbox"),
		filepath.Join(home, ".config", "promptbox"),
	}, GlobalDirs())
}

func TestLoadDotenv(t *testing.T) {
	const key = "PROMPTBOX_DOTENV_TEST"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	work := t.TempDir()
	global := t.TempDir()
	writeFile(t, filepath.Join(work, ".env"), key+"=from-work\n")
	writeFile(t, filepath.Join(global, ".env"), key+"=from-global\nPROMPTBOX_DOTENV_OTHER=global-only\n")
	t.Setenv("PROMPTBOX_DOTENV_OTHER", "")
	require.NoError(t, os.Unsetenv("PROMPTBOX_DOTENV_OTHER"))

	LoadDotenv(work, []string{global})
	assert.Equal(t, "from-work", os.Getenv(key))
	assert.Equal(t, "global-only", os.Getenv("PROMPTBOX_DOTENV_OTHER"))
}

func TestSpec(t *testing.T) {
	cfg := &Config{
		DefaultHost: "together",
		Hosts:       map[string]host.Config{"gpu-box": {Name: "gpu-box", Protocol: "ollama"}},
	}

	tests := []struct {
		name string
		opts model.Options
		want model.Spec
	}{
		{name: "prefix", opts: model.Options{Model: "ollama/llama3"}, want: model.Spec{Host: "ollama", Model: "llama3"}},
		{name: "configured prefix", opts: model.Options{Model: "gpu-box/llama3"}, want: model.Spec{Host: "gpu-box", Model: "llama3"}},
		{name: "slash in model", opts: model.Options{Model: "mistralai/Mixtral"}, want: model.Spec{Host: "together", Model: "mistralai/Mixtral"}},
		{name: "options host", opts: model.Options{Model: "gpt-4", Host: "openai"}, want: model.Spec{Host: "openai", Model: "gpt-4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Spec(tt.opts))
		})
	}

	assert.Equal(t, DefaultHost, (&Config{}).Spec(model.Options{Model: "llama3"}).Host)
}
