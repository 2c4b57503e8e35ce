package main

import (
	"github.com/spf13/cobra"
)

func newCallCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "call <phone-number>",
		Short: "Place an outbound call through the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Call(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			p.Line("%s: call_id=%s demo_mode=%t", resp.Message, resp.CallID, resp.DemoMode)
			return nil
		},
	}
}
