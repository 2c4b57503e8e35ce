package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/voicedesk/pkg/log"
)

var scriptedMessages = []string{
	"Hello, I need help with my account",
	"Can you tell me about your services?",
	"I want to cancel my subscription",
	"What are your business hours?",
	"Thank you for your help",
}

func newTestCmd(opts *globalOptions) *cobra.Command {
	var phone string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run a scripted conversation and a demo call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := opts.client()
			p := newPrinter(cmd.OutOrStdout())
			logger := log.FromCtx(ctx)

			health, err := client.Health(ctx)
			if err != nil {
				return fmt.Errorf("server not reachable at %s: %w", opts.baseURL, err)
			}
			p.Line("health: %s (demo mode %t)", health.Status, health.DemoMode)

			var conversationID string
			for i, msg := range scriptedMessages {
				resp, err := client.Chat(ctx, conversationID, msg)
				if err != nil {
					return fmt.Errorf("message %d: %w", i+1, err)
				}
				conversationID = resp.ConversationID
				logger.Debug().Str("session", conversationID).Int("turns", len(resp.History)).Msg("chat ok")

				p.Line("%d. You: %s", i+1, msg)
				p.Reply(resp.Assistant.Text)
			}

			call, err := client.Call(ctx, phone)
			if err != nil {
				return err
			}
			p.Line("call %s placed (demo mode %t): %s", call.CallID, call.DemoMode, call.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "+91-DEMO-NUMBER", "number used for the test call")
	return cmd
}
