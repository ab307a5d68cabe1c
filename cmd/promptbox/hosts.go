package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/promptbox/config"
	"github.com/randalmurphal/promptbox/host"
)

func newHostsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List configured hosts and built-in protocols",
		Long:  "List configured hosts and built-in protocols. The default host is marked with *.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.setup(cmd.ErrOrStderr())

			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			def := cfg.DefaultHost
			if def == "" {
				def = config.DefaultHost
			}

			names := make([]string, 0, len(cfg.Hosts))
			for name := range cfg.Hosts {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				h := cfg.Hosts[name]
				marker := ""
				if name == def {
					marker = "*"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\n", name, marker, h.ProtocolName(), h.Endpoint)
			}
			for _, protocol := range host.Available() {
				if _, ok := cfg.Hosts[protocol]; ok {
					continue
				}
				marker := ""
				if protocol == def {
					marker = "*"
				}
				fmt.Fprintf(w, "%s%s\t%s\t(built-in)\n", protocol, marker, protocol)
			}
			return w.Flush()
		},
	}
}
