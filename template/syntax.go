package template

import (
	"regexp"
	"sort"
	"strings"
)

// goTemplateKeywords are Go template reserved words that should not be
// converted to variable references.
var goTemplateKeywords = map[string]bool{
	"else":     true,
	"end":      true,
	"if":       true,
	"range":    true,
	"with":     true,
	"define":   true,
	"template": true,
	"block":    true,
}

var (
	ifPattern      = regexp.MustCompile(`\{\{(-?\s*)#if\s+(\w+)(\s*-?)\}\}`)
	unlessPattern  = regexp.MustCompile(`\{\{(-?\s*)#unless\s+(\w+)(\s*-?)\}\}`)
	eachPattern    = regexp.MustCompile(`\{\{(-?\s*)#each\s+(\w+)(\s*-?)\}\}`)
	closePattern   = regexp.MustCompile(`\{\{(-?\s*)/(?:if|unless|each)(\s*-?)\}\}`)
	varPattern     = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)
	controlPattern = regexp.MustCompile(`\{\{#(?:if|unless|each)\s+([a-zA-Z_]\w*)\}\}`)
	callPattern    = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\s+([^{}]+)\}\}`)
	identPattern   = regexp.MustCompile(`^[a-zA-Z_]\w*$`)
	numberPattern  = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)
)

// convertSyntax converts Handlebars-like syntax to Go template syntax.
//
// Conversions:
//   - {{variable}} -> {{.variable}}
//   - {{this}} -> {{.}}
//   - {{#if x}}...{{/if}} -> {{if .x}}...{{end}}
//   - {{#unless x}}...{{/unless}} -> {{if not .x}}...{{end}}
//   - {{#each items}}...{{/each}} -> {{range .items}}...{{end}}
//   - {{helper arg1 arg2}} -> {{helper .arg1 .arg2}}
func (e *Engine) convertSyntax(input string) string {
	result := ifPattern.ReplaceAllString(input, "{{${1}if .${2}${3}}}")
	result = unlessPattern.ReplaceAllString(result, "{{${1}if not .${2}${3}}}")
	result = eachPattern.ReplaceAllString(result, "{{${1}range .${2}${3}}}")
	result = closePattern.ReplaceAllString(result, "{{${1}end${2}}}")
	result = strings.ReplaceAll(result, "{{this}}", "{{.}}")

	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		name := match[2 : len(match)-2]
		if goTemplateKeywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})

	return e.convertHelperCalls(result)
}

// convertHelperCalls rewrites the arguments of calls to known functions.
// {{helper arg1 arg2}} -> {{helper .arg1 .arg2}}
func (e *Engine) convertHelperCalls(input string) string {
	return callPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := callPattern.FindStringSubmatch(match)
		name, args := sub[1], sub[2]
		if _, ok := e.funcs[name]; !ok {
			return match
		}
		return "{{" + name + " " + convertArguments(strings.TrimSpace(args)) + "}}"
	})
}

// convertArguments converts a space-separated list of arguments.
// Variables become .variable; literals and pipelines stay as they are.
func convertArguments(args string) string {
	parts := splitArguments(args)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, "."),
			isNumber(part),
			isQuotedString(part),
			part == "true" || part == "false",
			part == "|":
			continue
		case part == "this":
			parts[i] = "."
		case isValidIdentifier(part):
			parts[i] = "." + part
		}
	}
	return strings.Join(parts, " ")
}

// splitArguments splits on spaces outside of quotes. Quotes stay on the
// parts they delimit.
func splitArguments(args string) []string {
	var parts []string
	var quote rune
	start := -1
	for i, r := range args {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ' ':
			if start >= 0 {
				parts = append(parts, args[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, args[start:])
	}
	return parts
}

// isNumber reports whether s is an integer or decimal literal.
func isNumber(s string) bool {
	return numberPattern.MatchString(s)
}

// isQuotedString reports whether s is wrapped in matching quotes.
func isQuotedString(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == last && (first == '"' || first == '\'')
}

// isValidIdentifier reports whether s can name a template argument.
func isValidIdentifier(s string) bool {
	return identPattern.MatchString(s)
}

// extractVariables returns the sorted, deduplicated variable names a
// template refers to.
func extractVariables(templateStr string) []string {
	seen := make(map[string]bool)

	for _, match := range varPattern.FindAllStringSubmatch(templateStr, -1) {
		if name := match[1]; !goTemplateKeywords[name] && name != "this" {
			seen[name] = true
		}
	}

	for _, match := range controlPattern.FindAllStringSubmatch(templateStr, -1) {
		seen[match[1]] = true
	}

	for _, match := range callPattern.FindAllStringSubmatch(templateStr, -1) {
		if goTemplateKeywords[match[1]] {
			continue
		}
		for _, arg := range splitArguments(match[2]) {
			if isValidIdentifier(arg) && arg != "true" && arg != "false" && arg != "this" {
				seen[arg] = true
			}
		}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}
