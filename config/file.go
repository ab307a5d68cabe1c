package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/promptbox/host"
	"github.com/randalmurphal/promptbox/model"
)

// FileNames are the config file names looked for in each directory, in
// order. Only the first one present in a directory is read.
var FileNames = []string{"promptbox.toml", "promptbox.yaml", "promptbox.yml"}

// File is the contents of one config file.
type File struct {
	// Path is where the file was loaded from.
	Path string `toml:"-" yaml:"-"`

	// Model holds default model options for every template.
	Model model.Options `toml:"model,omitempty" yaml:"model,omitempty"`

	// DefaultHost serves models named without a host prefix.
	DefaultHost string `toml:"default_host,omitempty" yaml:"default_host,omitempty"`

	// Host configures hosts by name.
	Host map[string]host.Config `toml:"host,omitempty" yaml:"host,omitempty"`

	// Templates lists template directories relative to the file.
	// Unset means a "promptbox" directory next to a project file, or a
	// "templates" directory inside a global config directory.
	Templates []string `toml:"templates,omitempty" yaml:"templates,omitempty"`
}

// ReadFile loads the config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseFile(path, data)
}

// ParseFile decodes config data, picking the format from the extension.
// Unknown keys are an error so typos do not go unnoticed.
func ParseFile(path string, data []byte) (*File, error) {
	f := &File{Path: path}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", ErrInvalidConfig, path, ext)
	}

	for name, cfg := range f.Host {
		cfg.Name = name
		f.Host[name] = cfg
	}
	return f, nil
}

// templateDirs resolves the file's template directories. Directories that
// do not exist are dropped.
func (f *File) templateDirs(global bool) []string {
	base := filepath.Dir(f.Path)
	dirs := f.Templates
	if len(dirs) == 0 {
		if global {
			dirs = []string{"templates"}
		} else {
			dirs = []string{"promptbox"}
		}
	}

	var out []string
	for _, d := range dirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(base, d)
		}
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, filepath.Clean(d))
		}
	}
	return out
}

// findFile returns the config file in dir, or "" if there is none.
func findFile(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
