package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/promptbox/config"
)

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	if cmd.Use != "promptbox" {
		t.Errorf("expected use 'promptbox', got %q", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("expected descriptions to be set")
	}

	for _, name := range []string{"dir", "tokenizer", "log-level", "log-format"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag not registered", name)
		}
	}

	want := []string{"count", "hosts", "list", "run", "schema"}
	var got []string
	for _, sub := range cmd.Commands() {
		got = append(got, sub.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered (have %v)", name, got)
		}
	}
}

// isolate points HOME and the config directories at an empty temp dir and
// clears promptbox environment overrides.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, env := range []string{
		config.EnvModel, config.EnvHost, config.EnvContextLimit,
		config.EnvReserveOutput, config.EnvTemplates,
		"PROMPTBOX_DEBUG", "PROMPTBOX_LOG_LEVEL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(env, "")
	}
}

// project creates a project directory with a promptbox.toml and the given
// templates in its promptbox/ directory.
func project(t *testing.T, configTOML string, templates map[string]string) string {
	t.Helper()
	isolate(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "promptbox.toml"), []byte(configTOML), 0o644))
	for name, body := range templates {
		path := filepath.Join(dir, "promptbox", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}
