package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var showPaths bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the templates visible from the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.setup(cmd.ErrOrStderr())

			runner, err := a.newRunner()
			if err != nil {
				return err
			}
			entries, err := runner.Library().List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range entries {
				desc := e.Description
				if e.Err != nil {
					desc = fmt.Sprintf("(invalid: %v)", e.Err)
				}
				if showPaths {
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, desc, e.Path)
				} else {
					fmt.Fprintf(w, "%s\t%s\n", e.Name, desc)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showPaths, "paths", false, "Show where each template was found")
	return cmd
}
