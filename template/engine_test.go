package template

import (
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/promptbox/tokens"
)

func TestEngine_Render_SimpleVariables(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables map[string]any
		want      string
	}{
		{
			name:      "single variable",
			template:  "Hello, {{name}}!",
			variables: map[string]any{"name": "World"},
			want:      "Hello, World!",
		},
		{
			name:      "multiple variables",
			template:  "{{greeting}}, {{name}}!",
			variables: map[string]any{"greeting": "Hi", "name": "Alice"},
			want:      "Hi, Alice!",
		},
		{
			name:      "missing variable",
			template:  "Hello, {{name}}!",
			variables: map[string]any{},
			want:      "Hello, <no value>!",
		},
		{
			name:      "variable named like a helper",
			template:  "{{lines}} lines",
			variables: map[string]any{"lines": 3},
			want:      "3 lines",
		},
		{
			name:      "go template syntax",
			template:  "Name: {{.task.name}}",
			variables: map[string]any{"task": map[string]any{"name": "Test"}},
			want:      "Name: Test",
		},
		{
			name:      "nil variables map",
			template:  "Hello, World!",
			variables: nil,
			want:      "Hello, World!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Render_Blocks(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables map[string]any
		want      string
	}{
		{
			name:      "if true",
			template:  "{{#if urgent}}URGENT: {{/if}}Task",
			variables: map[string]any{"urgent": true},
			want:      "URGENT: Task",
		},
		{
			name:      "if with else",
			template:  "Status: {{#if done}}Complete{{else}}Pending{{/if}}",
			variables: map[string]any{"done": false},
			want:      "Status: Pending",
		},
		{
			name:      "unless",
			template:  "{{#unless done}}TODO {{/unless}}write tests",
			variables: map[string]any{"done": false},
			want:      "TODO write tests",
		},
		{
			name:      "each with this",
			template:  "{{#each items}}- {{this}}\n{{/each}}",
			variables: map[string]any{"items": []any{"a", "b"}},
			want:      "- a\n- b\n",
		},
		{
			name:      "each over empty array argument",
			template:  "Items:{{#each items}} {{this}}{{/each}}",
			variables: map[string]any{"items": []any{}},
			want:      "Items:",
		},
		{
			name:      "trim markers",
			template:  "a\n{{- #if x -}}\nb\n{{- /if}}",
			variables: map[string]any{"x": true},
			want:      "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_Render_Helpers(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables map[string]any
		want      string
	}{
		{
			name:      "truncate keeps tokens",
			template:  "{{truncate description 3}}",
			variables: map[string]any{"description": "This is a very long description"},
			want:      "This is a",
		},
		{
			name:      "truncate short string",
			template:  "{{truncate text 100}}",
			variables: map[string]any{"text": "Short"},
			want:      "Short",
		},
		{
			name:      "tokens",
			template:  "{{tokens text}}",
			variables: map[string]any{"text": "hello, world"},
			want:      "3",
		},
		{
			name:      "shorten",
			template:  "{{shorten text 8}}",
			variables: map[string]any{"text": "hello world"},
			want:      "hello...",
		},
		{
			name:      "join array argument",
			template:  `{{join items ", "}}`,
			variables: map[string]any{"items": []any{"a", 2, "c"}},
			want:      "a, 2, c",
		},
		{
			name:      "lines",
			template:  "{{lines items}}",
			variables: map[string]any{"items": []string{"one", "two"}},
			want:      "one\ntwo",
		},
		{
			name:      "upper",
			template:  "{{upper name}}",
			variables: map[string]any{"name": "alice"},
			want:      "ALICE",
		},
		{
			name:      "json",
			template:  "{{json data}}",
			variables: map[string]any{"data": map[string]string{"key": "value"}},
			want:      "{\n  \"key\": \"value\"\n}",
		},
		{
			name:      "contains literal",
			template:  `{{contains text "world"}}`,
			variables: map[string]any{"text": "hello world"},
			want:      "true",
		},
		{
			name:      "default",
			template:  `{{default name "anonymous"}}`,
			variables: map[string]any{"name": ""},
			want:      "anonymous",
		},
		{
			name:      "indent",
			template:  "{{indent text 2}}",
			variables: map[string]any{"text": "a\nb"},
			want:      "  a\n  b",
		},
		{
			name:      "wrap",
			template:  "{{wrap text 10}}",
			variables: map[string]any{"text": "the quick brown fox"},
			want:      "the quick\nbrown fox",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.template, tt.variables)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_TruncateUsesTokenizer(t *testing.T) {
	perByte := tokens.TokenizerFunc(func(s string) (tokens.Encoding, error) {
		spans := make([]tokens.Span, len(s))
		for i := range s {
			spans[i] = tokens.Span{Start: i, End: i + 1}
		}
		return tokens.NewEncoding(spans)
	})

	e := NewEngine(WithTokenizer(perByte))
	got, err := e.Render("{{truncate text 4}}", map[string]any{"text": "abcdefgh"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abcd" {
		t.Errorf("got %q, want %q", got, "abcd")
	}
}

func TestEngine_Compile(t *testing.T) {
	e := NewEngine()

	c, err := e.Compile("greeting", "Hello, {{name}}!")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if c.Name() != "greeting" {
		t.Errorf("Name() = %q", c.Name())
	}

	for _, name := range []string{"Alice", "Bob"} {
		got, err := c.Execute(map[string]any{"name": name})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if want := "Hello, " + name + "!"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestEngine_Errors(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name      string
		template  string
		variables map[string]any
		wantErr   error
	}{
		{name: "empty", template: "", wantErr: ErrEmpty},
		{name: "unclosed block", template: "{{#if x}}never closed", wantErr: ErrParse},
		{name: "unknown function", template: "{{nosuch .x 1}}", wantErr: ErrParse},
		{
			name:      "wrong argument type",
			template:  "{{upper count}}",
			variables: map[string]any{"count": 3},
			wantErr:   ErrExecute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(tt.template, tt.variables)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngine_Parse(t *testing.T) {
	e := NewEngine()

	got, err := e.Parse("{{greeting}}, {{name}}! {{#if urgent}}x{{/if}}{{#each items}}{{this}}{{/each}} {{truncate description 10}} {{name}}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"description", "greeting", "items", "name", "urgent"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := e.Parse("{{#each x}}"); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestEngine_AddFunc(t *testing.T) {
	e := NewEngine()
	e.AddFunc("double", func(s string) string { return s + s })

	got, err := e.Render("{{double name}}", map[string]any{"name": "ha"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "haha" {
		t.Errorf("got %q, want %q", got, "haha")
	}
}

func TestValidateVariables(t *testing.T) {
	if err := ValidateVariables([]string{"name"}, map[string]any{"name": "x", "extra": 1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := ValidateVariables([]string{"name", "age"}, map[string]any{"name": "x"})
	if !errors.Is(err, ErrVariable) {
		t.Fatalf("expected ErrVariable, got %v", err)
	}
	if !strings.Contains(err.Error(), "age") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestConvertSyntax(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		input string
		want  string
	}{
		{"{{name}}", "{{.name}}"},
		{"{{#if done}}yes{{else}}no{{/if}}", "{{if .done}}yes{{else}}no{{end}}"},
		{"{{#unless done}}no{{/unless}}", "{{if not .done}}no{{end}}"},
		{"{{#each items}}{{this}}{{/each}}", "{{range .items}}{{.}}{{end}}"},
		{"{{truncate body 10}}", "{{truncate .body 10}}"},
		{`{{join tags ", "}}`, `{{join .tags ", "}}`},
		{"{{unknown a b}}", "{{unknown a b}}"},
		{"Keep {{else}} and {{end}} unchanged", "Keep {{else}} and {{end}} unchanged"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := e.convertSyntax(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitArguments(t *testing.T) {
	got := splitArguments(`text "a b" 'c d' 10`)
	want := []string{"text", `"a b"`, `'c d'`, "10"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestIsNumber(t *testing.T) {
	for s, want := range map[string]bool{
		"10": true, "-3": true, "1.5": true, "": false, "-": false, "abc": false, "1a": false,
	} {
		if got := isNumber(s); got != want {
			t.Errorf("isNumber(%q) = %v, want %v", s, got, want)
		}
	}
}
