package main

import (
	"sort"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report server health and wired backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := opts.client().Health(cmd.Context())
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.Line("status:    %s", health.Status)
			p.Line("demo mode: %t", health.DemoMode)
			p.Line("sessions:  %d", health.Sessions)

			names := make([]string, 0, len(health.Components))
			for name := range health.Components {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				p.Line("  %-12s real=%-5t backend=%v", name, health.Components[name], health.Backends[name])
			}
			return nil
		},
	}
}
