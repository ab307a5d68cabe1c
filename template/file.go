package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/promptbox/model"
)

// Extensions are the file suffixes recognized as template files, in
// lookup order.
var Extensions = []string{".pb.toml", ".pb.yaml", ".pb.yml"}

// File is a template file: the prompt text, the model settings it wants,
// and the arguments it accepts.
type File struct {
	// Name is the template name, its path relative to the search directory
	// without the extension.
	Name string `toml:"-" yaml:"-" json:"-"`
	// Path is where the file was loaded from.
	Path string `toml:"-" yaml:"-" json:"-"`

	Description  string            `toml:"description" yaml:"description" json:"description"`
	Template     string            `toml:"template,omitempty" yaml:"template,omitempty" json:"template,omitempty" jsonschema:"description=Prompt template text"`
	TemplatePath string            `toml:"template_path,omitempty" yaml:"template_path,omitempty" json:"template_path,omitempty" jsonschema:"description=File holding the prompt text, relative to this file"`
	System       string            `toml:"system,omitempty" yaml:"system,omitempty" json:"system,omitempty" jsonschema:"description=System prompt sent with the rendered template"`
	Model        model.Options     `toml:"model,omitempty" yaml:"model,omitempty" json:"model,omitempty"`
	Options      map[string]Option `toml:"options,omitempty" yaml:"options,omitempty" json:"options,omitempty"`
}

// Load reads and validates a template file. The format is picked from the
// extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}

	f, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	if f.TemplatePath != "" {
		p := f.TemplatePath
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(path), p)
		}
		body, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read template_path: %w", ErrInvalidFile, path, err)
		}
		f.Template = string(body)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a template file without touching the filesystem.
// template_path is not resolved and the result is not validated.
func Parse(path string, data []byte) (*File, error) {
	f := &File{Path: path, Name: Name(filepath.Base(path))}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidFile, path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", ErrInvalidFile, path, ext)
	}

	return f, nil
}

// Name strips a template extension from a file name.
func Name(filename string) string {
	for _, ext := range Extensions {
		if strings.HasSuffix(filename, ext) {
			return strings.TrimSuffix(filename, ext)
		}
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// Validate checks the file for mistakes that would only show up at render time.
func (f *File) Validate() error {
	var errs []string

	if f.Template == "" {
		errs = append(errs, "template is empty")
	}
	for _, name := range f.OptionNames() {
		opt := f.Options[name]
		if !isValidIdentifier(name) {
			errs = append(errs, fmt.Sprintf("option name %q is not an identifier", name))
		}
		if !opt.Type.Valid() {
			errs = append(errs, fmt.Sprintf("option %s has unknown type %q", name, opt.Type))
		}
		if opt.Required && opt.Default != nil {
			errs = append(errs, fmt.Sprintf("option %s is required and has a default", name))
		}
	}
	for _, arg := range f.Model.Context.TrimArgs {
		if _, ok := f.Options[arg]; !ok {
			errs = append(errs, fmt.Sprintf("trim_args names unknown option %s", arg))
		}
	}
	if err := f.Model.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFile, strings.Join(errs, "; "))
	}
	return nil
}

// OptionNames returns the declared argument names in sorted order.
func (f *File) OptionNames() []string {
	names := make([]string, 0, len(f.Options))
	for name := range f.Options {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prompt returns the template text with pre and post joined on by blank
// lines. Empty pre or post are left out.
func (f *File) Prompt(pre, post string) string {
	parts := make([]string, 0, 3)
	if pre != "" {
		parts = append(parts, pre)
	}
	parts = append(parts, f.Template)
	if post != "" {
		parts = append(parts, post)
	}
	return strings.Join(parts, "\n\n")
}

// Arguments converts raw command-line values into renderer arguments.
// Every declared option gets a value: the parsed input, its default, or an
// empty value. Missing required options and undeclared names are errors.
func (f *File) Arguments(raw map[string][]string) (map[string]any, error) {
	for name := range raw {
		if _, ok := f.Options[name]; !ok {
			return nil, fmt.Errorf("%w: unknown option %s", ErrInvalidArgument, name)
		}
	}

	args := make(map[string]any, len(f.Options))
	for _, name := range f.OptionNames() {
		opt := f.Options[name]
		values := raw[name]

		if len(values) == 0 {
			switch {
			case opt.Default != nil:
				args[name] = opt.defaultValue()
			case opt.Required:
				return nil, fmt.Errorf("%w: %s", ErrVariable, name)
			default:
				args[name] = opt.zero()
			}
			continue
		}

		if !opt.Array {
			v, err := opt.ParseValue(values[len(values)-1])
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", name, err)
			}
			args[name] = v
			continue
		}

		list := make([]any, 0, len(values))
		for _, raw := range values {
			v, err := opt.ParseValue(raw)
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", name, err)
			}
			list = append(list, v)
		}
		args[name] = list
	}

	return args, nil
}
