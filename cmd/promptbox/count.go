package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/promptbox/budget"
	"github.com/randalmurphal/promptbox/tokens"
)

func newCountCommand(a *app) *cobra.Command {
	var estimate bool

	cmd := &cobra.Command{
		Use:   "count [file|-]",
		Short: "Count the tokens in a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.setup(cmd.ErrOrStderr())

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var tok tokens.Tokenizer = tokens.NewApprox(tokens.DefaultRunesPerToken)
			if !estimate {
				tok, err = a.newTokenizer()
				if err != nil {
					return err
				}
			}
			enc, err := tok.Encode(text)
			if err != nil {
				return fmt.Errorf("%w: %w", budget.ErrTokenizer, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&estimate, "estimate", false, "Estimate from rune count instead of tokenizing (same as --tokenizer approx)")
	return cmd
}

// readInput reads the file named in args, or stdin when args is empty or "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
