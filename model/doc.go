// Package model holds the options that describe a model call.
//
// Options are layered: a template's own settings come first, then each
// configuration file from nearest to farthest, then built-in defaults. Every
// layer only fills fields the layers above it left unset:
//
//	opts := tmpl.Model
//	opts.MergeDefaults(cfg.Model)
//	ctxOpts := opts.Context.Resolve()
//
// A model may be named with a host prefix, as in "ollama/llama3". ParseSpec
// splits the two apart.
package model
