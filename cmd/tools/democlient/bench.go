package main

import (
	"time"

	"github.com/spf13/cobra"
)

var benchMessages = []string{
	"Hello",
	"How are you?",
	"Can you help me?",
	"What services do you offer?",
	"Thank you",
}

type benchResult struct {
	Total     time.Duration
	Succeeded int
	Attempted int
}

func (r benchResult) Average() time.Duration {
	if r.Attempted == 0 {
		return 0
	}
	return r.Total / time.Duration(r.Attempted)
}

func newBenchCmd(opts *globalOptions) *cobra.Command {
	var rounds int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure /demo/chat latency with fresh sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := opts.client()
			p := newPrinter(cmd.OutOrStdout())

			var res benchResult
			start := time.Now()
			for round := 0; round < rounds; round++ {
				for _, msg := range benchMessages {
					res.Attempted++
					reqStart := time.Now()
					if _, err := client.Chat(ctx, "", msg); err != nil {
						p.Line("request %d: %v", res.Attempted, err)
						continue
					}
					res.Succeeded++
					p.Line("request %d: %s", res.Attempted, time.Since(reqStart).Round(time.Millisecond))
				}
			}
			res.Total = time.Since(start)

			p.Line("total:      %s", res.Total.Round(time.Millisecond))
			p.Line("successful: %d/%d", res.Succeeded, res.Attempted)
			p.Line("average:    %s per request", res.Average().Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVar(&rounds, "rounds", 1, "how many times to send the message set")
	return cmd
}
