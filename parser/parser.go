package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CodeBlock represents a fenced code block.
type CodeBlock struct {
	// Language is the language specifier after the opening fence (e.g., "go", "python").
	Language string

	// Content is the code inside the block, excluding fences.
	Content string
}

// Parser finds fenced blocks, sections and lists in Markdown answers.
type Parser struct {
	codeBlockRegex *regexp.Regexp
	sectionRegex   *regexp.Regexp
	bulletRegex    *regexp.Regexp
	numberedRegex  *regexp.Regexp
}

// NewParser creates a parser with compiled regexes.
func NewParser() *Parser {
	return &Parser{
		codeBlockRegex: regexp.MustCompile("(?s)```([\\w+-]*)[ \\t]*\\n(.*?)```"),
		sectionRegex:   regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`),
		bulletRegex:    regexp.MustCompile(`^\s*[-*+]\s+(.+)$`),
		numberedRegex:  regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`),
	}
}

// CodeBlocks returns every fenced code block in order.
func (p *Parser) CodeBlocks(text string) []CodeBlock {
	matches := p.codeBlockRegex.FindAllStringSubmatch(text, -1)
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{Language: strings.ToLower(m[1]), Content: m[2]})
	}
	return blocks
}

// Code returns the first block in language, or the first block at all when
// language is empty.
func (p *Parser) Code(text, language string) (string, bool) {
	for _, block := range p.CodeBlocks(text) {
		if language == "" || block.Language == strings.ToLower(language) {
			return block.Content, true
		}
	}
	return "", false
}

// JSON returns the first valid JSON object or array in text. Fenced json
// blocks are tried first, then the whole answer, then the value starting at
// the first brace or bracket.
func (p *Parser) JSON(text string) (json.RawMessage, bool) {
	for _, block := range p.CodeBlocks(text) {
		if block.Language != "json" && block.Language != "" {
			continue
		}
		if raw, ok := jsonValue(block.Content); ok {
			return raw, true
		}
	}

	if raw, ok := jsonValue(text); ok {
		return raw, true
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return raw, true
		}
	}
	return nil, false
}

func jsonValue(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

// Section returns the body under the Markdown header title, matched
// case-insensitively. The body ends at the next header of any level.
func (p *Parser) Section(text, title string) (string, bool) {
	matches := p.sectionRegex.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		if !strings.EqualFold(strings.TrimSpace(text[m[4]:m[5]]), title) {
			continue
		}
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		return strings.TrimSpace(text[m[1]:end]), true
	}
	return "", false
}

// List returns bulleted and numbered list items in order.
func (p *Parser) List(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		if m := p.bulletRegex.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
			continue
		}
		if m := p.numberedRegex.FindStringSubmatch(line); m != nil {
			items = append(items, strings.TrimSpace(m[1]))
		}
	}
	return items
}
