package main

import (
	"github.com/spf13/cobra"
)

// newRootCommand creates the root command with every subcommand attached.
func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "promptbox",
		Short: "promptbox - prompt templates for language models",
		Long: `promptbox renders prompt templates and sends them to language model
hosts. Arguments marked for trimming are shortened so the rendered prompt
fits the model's context window.

Templates are *.pb.toml or *.pb.yaml files found in the template
directories named by promptbox.toml files, from the working directory up
to the filesystem root and then in ~/.config/promptbox.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.dir, "dir", "C", "", "Start config discovery in this directory (default: working directory)")
	flags.StringVar(&a.tokenizer, "tokenizer", "tiktoken", "Tokenizer for budgeting: tiktoken, words, approx, or a tiktoken encoding name")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text, json")

	cmd.AddCommand(
		newRunCommand(a),
		newCountCommand(a),
		newListCommand(a),
		newSchemaCommand(),
		newHostsCommand(a),
	)
	return cmd
}
