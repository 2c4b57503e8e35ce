package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/voicedesk/pkg/log"
)

const defaultBaseURL = "http://localhost:8000"

type globalOptions struct {
	baseURL string
	timeout time.Duration
	debug   bool
}

// NewRootCmd assembles the democlient command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var flush func()

	cmd := &cobra.Command{
		Use:   "democlient",
		Short: "Exercise a running voicedesk server",
		Long: `democlient drives the voicedesk HTTP API the way a tester would:
health checks, scripted conversations, an interactive chat, a small
latency benchmark, simulated or real outbound calls, and reading the
transcript journal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = godotenv.Load()
			level := "warn"
			if opts.debug {
				level = "debug"
			}
			var ctx context.Context
			ctx, flush = log.NewContextWithLogger(cmd.Context(), level)
			cmd.SetContext(ctx)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if flush != nil {
				flush()
			}
		},
	}

	baseURL := os.Getenv("VOICEDESK_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cmd.PersistentFlags().StringVar(&opts.baseURL, "url", baseURL, "server base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "enable debug logging")

	cmd.AddCommand(
		newCheckCmd(opts),
		newTestCmd(opts),
		newChatCmd(opts),
		newBenchCmd(opts),
		newCallCmd(opts),
		newJournalCmd(),
	)
	return cmd
}

func (o *globalOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.timeout)
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
