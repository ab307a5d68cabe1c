package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/randalmurphal/promptbox/truncate"
)

func (e *Engine) defaultFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate":  e.truncateTokens,
		"tokens":    e.countTokens,
		"shorten":   shorten,
		"json":      toJSON,
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"split":     strings.Split,
		"join":      join,
		"lines":     lines,
		"replace":   strings.ReplaceAll,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"default":   defaultValue,
		"indent":    indent,
		"wrap":      wrap,
	}
}

// truncateTokens keeps the first n tokens of s.
func (e *Engine) truncateTokens(s string, n int) (string, error) {
	return truncate.ToTokens(e.tokenizer, s, n)
}

func (e *Engine) countTokens(s string) (int, error) {
	enc, err := e.tokenizer.Encode(s)
	if err != nil {
		return 0, err
	}
	return enc.Len(), nil
}

// shorten cuts s to maxLen runes, ending in "..." when something was cut.
func shorten(s string, maxLen int) string {
	return truncate.ToRunes(s, maxLen)
}

// toJSON converts a value to a pretty-printed JSON string.
// If marshaling fails, returns the value's default string representation.
func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// join accepts both []string and the []any produced for array arguments.
func join(list any, sep string) string {
	switch l := list.(type) {
	case []string:
		return strings.Join(l, sep)
	case []any:
		parts := make([]string, len(l))
		for i, v := range l {
			parts[i] = fmt.Sprint(v)
		}
		return strings.Join(parts, sep)
	case nil:
		return ""
	default:
		return fmt.Sprint(l)
	}
}

func lines(list any) string {
	return join(list, "\n")
}

// defaultValue returns def when val is nil or "". Zero numbers and false
// are kept.
func defaultValue(val, def any) any {
	switch v := val.(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
	}
	return val
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// wrap breaks s into lines of at most width runes at word boundaries.
// Words longer than width get a line of their own. width <= 0 returns s.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	var out []string
	var line strings.Builder
	for _, word := range strings.Fields(s) {
		n := utf8.RuneCountInString(line.String())
		if n > 0 && n+1+utf8.RuneCountInString(word) > width {
			out = append(out, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		out = append(out, line.String())
	}
	return strings.Join(out, "\n")
}
