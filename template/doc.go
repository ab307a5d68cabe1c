// Package template loads prompt template files and renders them.
//
// # Files
//
// A template file is TOML (name.pb.toml) or YAML (name.pb.yaml). It holds
// the prompt text, the model settings the prompt wants, and the arguments
// it accepts:
//
//	description = "Summarize a blog post"
//	template = "Summarize {{title}} in {{count}} paragraphs:\n{{post}}"
//
//	[model]
//	model = "ollama/llama3"
//
//	[model.context]
//	trim_args = ["post"]
//
//	[options.title]
//	required = true
//
//	[options.count]
//	type = "integer"
//	default = 3
//
//	[options.post]
//	type = "file"
//
// A Library finds files by name across search directories, nearest first,
// and can watch them for changes.
//
// # Syntax
//
// Templates use a Handlebars-like syntax that is converted to Go template
// syntax before execution. Plain Go template syntax works as well.
//
//	Hello, {{name}}!
//	{{#if urgent}}URGENT: {{/if}}{{title}}
//	{{#unless done}}TODO{{/unless}}
//	{{#each items}}- {{this}}
//	{{/each}}
//	{{truncate description 100}}
//
// # Built-in Functions
//
//   - truncate(s string, n int) string - Keep the first n tokens
//   - tokens(s string) int - Count tokens
//   - shorten(s string, maxLen int) string - Cut to maxLen characters with ellipsis
//   - json(v any) string - Convert value to pretty-printed JSON
//   - upper, lower, trim - Case and whitespace helpers
//   - split(s, sep string) []string - Split string by separator
//   - join(list, sep string) string - Join a list with separator
//   - lines(list) string - Join a list with newlines
//   - replace(s, old, new string) string - Replace all occurrences
//   - contains, hasPrefix, hasSuffix - Substring tests
//   - default(val, defaultVal any) any - Return default if val is nil/empty
//   - indent(s string, spaces int) string - Add spaces to each line
//   - wrap(s string, width int) string - Wrap text at width
package template
