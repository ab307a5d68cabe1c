package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound indicates the answer holds nothing of the requested kind.
	ErrNotFound = errors.New("nothing to extract")

	// ErrInvalidExtractor indicates an extractor spec that cannot be parsed.
	ErrInvalidExtractor = errors.New("invalid extractor")
)

// Kind is what an Extractor pulls out.
type Kind string

const (
	KindJSON    Kind = "json"
	KindYAML    Kind = "yaml"
	KindCode    Kind = "code"
	KindSection Kind = "section"
	KindList    Kind = "list"
)

// Extractor selects one part of an answer.
type Extractor struct {
	Kind Kind
	// Arg is the language for code and the title for section.
	Arg string
}

// ParseExtractor parses "kind" or "kind:arg".
func ParseExtractor(spec string) (Extractor, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(spec), ":")
	x := Extractor{Kind: Kind(strings.ToLower(kind)), Arg: strings.TrimSpace(arg)}

	switch x.Kind {
	case KindJSON, KindYAML, KindList:
		if x.Arg != "" {
			return Extractor{}, fmt.Errorf("%w: %s takes no argument", ErrInvalidExtractor, x.Kind)
		}
	case KindCode:
	case KindSection:
		if x.Arg == "" {
			return Extractor{}, fmt.Errorf("%w: section needs a title", ErrInvalidExtractor)
		}
	default:
		return Extractor{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidExtractor, kind)
	}
	return x, nil
}

// String returns x in kind[:arg] form.
func (x Extractor) String() string {
	if x.Arg == "" {
		return string(x.Kind)
	}
	return string(x.Kind) + ":" + x.Arg
}

// Apply extracts x from answer. JSON comes back indented; YAML is
// re-encoded after checking it parses; lists are one item per line.
func (x Extractor) Apply(answer string) (string, error) {
	p := NewParser()

	switch x.Kind {
	case KindJSON:
		raw, ok := p.JSON(answer)
		if !ok {
			return "", fmt.Errorf("%w: no JSON value", ErrNotFound)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return buf.String(), nil

	case KindYAML:
		return extractYAML(p, answer)

	case KindCode:
		code, ok := p.Code(answer, x.Arg)
		if !ok {
			return "", fmt.Errorf("%w: no %s code block", ErrNotFound, x.describeLanguage())
		}
		return code, nil

	case KindSection:
		body, ok := p.Section(answer, x.Arg)
		if !ok {
			return "", fmt.Errorf("%w: no section %q", ErrNotFound, x.Arg)
		}
		return body, nil

	case KindList:
		items := p.List(answer)
		if len(items) == 0 {
			return "", fmt.Errorf("%w: no list items", ErrNotFound)
		}
		return strings.Join(items, "\n"), nil
	}

	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidExtractor, x.Kind)
}

func (x Extractor) describeLanguage() string {
	if x.Arg == "" {
		return "fenced"
	}
	return x.Arg
}

func extractYAML(p *Parser, answer string) (string, error) {
	source := ""
	for _, block := range p.CodeBlocks(answer) {
		if block.Language == "yaml" || block.Language == "yml" {
			source = block.Content
			break
		}
	}
	if source == "" {
		return "", fmt.Errorf("%w: no yaml code block", ErrNotFound)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(source), &doc); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("encode yaml: %w", err)
	}
	return string(out), nil
}
