package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/randalmurphal/promptbox/host"
	"github.com/randalmurphal/promptbox/model"
)

// ErrInvalidConfig indicates a config file or override that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultHost serves models when neither the model name, the options nor
// any config file pick a host.
const DefaultHost = "ollama"

// Environment variables read by Load. They override every file.
const (
	EnvModel         = "PROMPTBOX_MODEL"
	EnvHost          = "PROMPTBOX_HOST"
	EnvContextLimit  = "PROMPTBOX_CONTEXT_LIMIT"
	EnvReserveOutput = "PROMPTBOX_RESERVE_OUTPUT"
	EnvTemplates     = "PROMPTBOX_TEMPLATES"
)

// Config is the merged configuration.
type Config struct {
	// Model holds default model options. Template files merge on top.
	Model model.Options

	// DefaultHost serves models named without a host prefix.
	DefaultHost string

	// Hosts configures hosts by name.
	Hosts map[string]host.Config

	// TemplateDirs are searched for templates, nearest first.
	TemplateDirs []string

	// Files lists the config files that were read, nearest first.
	Files []string
}

// Loader discovers configuration.
type Loader struct {
	// Dir is where discovery starts. Default: the working directory.
	Dir string

	// GlobalDirs are searched after Dir and its parents.
	// Nil means GlobalDirs().
	GlobalDirs []string
}

// Load discovers configuration starting at dir.
func Load(dir string) (*Config, error) {
	return Loader{Dir: dir}.Load()
}

// GlobalDirs returns the existing global config directories: the user
// config directory and ~/.config, each with a promptbox subdirectory.
func GlobalDirs() []string {
	var candidates []string
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "promptbox"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "promptbox"))
	}

	var dirs []string
	for _, d := range candidates {
		if slices.Contains(dirs, d) {
			continue
		}
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// LoadDotenv loads .env from dir and then from each global directory.
// Variables already set are left alone, so earlier files win.
func LoadDotenv(dir string, globalDirs []string) {
	for _, d := range append([]string{dir}, globalDirs...) {
		_ = godotenv.Load(filepath.Join(d, ".env"))
	}
}

// Load discovers, merges and validates configuration.
func (l Loader) Load() (*Config, error) {
	start := l.Dir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		start = wd
	}
	start, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", l.Dir, err)
	}

	globals := l.GlobalDirs
	if globals == nil {
		globals = GlobalDirs()
	}

	cfg := &Config{Hosts: make(map[string]host.Config)}

	for dir := start; ; dir = filepath.Dir(dir) {
		if path := findFile(dir); path != "" {
			if err := cfg.add(path, false); err != nil {
				return nil, err
			}
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}

	for _, dir := range globals {
		path := findFile(dir)
		if path == "" {
			// A global directory needs no config file to hold templates.
			f := &File{Path: filepath.Join(dir, FileNames[0])}
			cfg.TemplateDirs = appendUnique(cfg.TemplateDirs, f.templateDirs(true)...)
			continue
		}
		if err := cfg.add(path, true); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// add merges the file at path under everything already loaded.
func (c *Config) add(path string, global bool) error {
	f, err := ReadFile(path)
	if err != nil {
		return err
	}
	c.Merge(f, global)
	c.Files = append(c.Files, path)
	return nil
}

// Merge fills unset fields of c from f.
func (c *Config) Merge(f *File, global bool) {
	c.Model.MergeDefaults(f.Model)
	if c.DefaultHost == "" {
		c.DefaultHost = f.DefaultHost
	}
	if c.Hosts == nil {
		c.Hosts = make(map[string]host.Config)
	}
	for name, hc := range f.Host {
		if existing, ok := c.Hosts[name]; ok {
			existing.MergeDefaults(hc)
			c.Hosts[name] = existing
			continue
		}
		c.Hosts[name] = hc
	}
	c.TemplateDirs = appendUnique(c.TemplateDirs, f.templateDirs(global)...)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvModel); v != "" {
		c.Model.Model = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		c.DefaultHost = v
	}
	if v := os.Getenv(EnvContextLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvContextLimit, v, err)
		}
		c.Model.Context.Limit = &n
	}
	if v := os.Getenv(EnvReserveOutput); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, EnvReserveOutput, v, err)
		}
		c.Model.Context.ReserveOutput = &n
	}
	if v := os.Getenv(EnvTemplates); v != "" {
		c.TemplateDirs = appendUnique(filepath.SplitList(v), c.TemplateDirs...)
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("%w: model: %w", ErrInvalidConfig, err)
	}
	for name, hc := range c.Hosts {
		if err := hc.Validate(); err != nil {
			return fmt.Errorf("%w: host %s: %w", ErrInvalidConfig, name, err)
		}
		if protocol := hc.ProtocolName(); !host.IsRegistered(protocol) {
			return fmt.Errorf("%w: host %s: unknown protocol %q", ErrInvalidConfig, name, protocol)
		}
	}
	if c.DefaultHost != "" && !c.IsHost(c.DefaultHost) {
		return fmt.Errorf("%w: default_host %q is not a known host", ErrInvalidConfig, c.DefaultHost)
	}
	return nil
}

// IsHost reports whether name is a configured host or a built-in protocol.
func (c *Config) IsHost(name string) bool {
	if _, ok := c.Hosts[name]; ok {
		return true
	}
	return host.IsRegistered(name)
}

// Spec resolves which host serves opts.Model. A host prefix in the model
// name wins, then opts.Host, then the configured default host.
func (c *Config) Spec(opts model.Options) model.Spec {
	spec := model.ParseSpec(opts.Model, c.IsHost)
	if spec.Host != "" {
		return spec
	}
	if opts.Host != "" {
		return spec.WithDefaultHost(opts.Host)
	}
	if c.DefaultHost != "" {
		return spec.WithDefaultHost(c.DefaultHost)
	}
	return spec.WithDefaultHost(DefaultHost)
}

// NewHost builds the host called name from its configuration.
func (c *Config) NewHost(name string) (host.Host, error) {
	return host.New(name, c.Hosts[name])
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
