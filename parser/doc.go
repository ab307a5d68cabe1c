// Package parser pulls structured content out of model answers.
//
// Models asked for JSON or code tend to wrap it in prose and Markdown
// fences. An Extractor selects the part a caller wants:
//
//	x, err := parser.ParseExtractor("code:go")
//	src, err := x.Apply(answer)
//
// Supported kinds are json, yaml, code[:language], section:<title> and list.
package parser
