package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(opts *globalOptions) *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively; 'clear' starts a new conversation, 'quit' exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := opts.client()
			p := newPrinter(cmd.OutOrStdout())

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				p.Line("You:")
				if !scanner.Scan() {
					return scanner.Err()
				}
				input := strings.TrimSpace(scanner.Text())

				switch strings.ToLower(input) {
				case "":
					continue
				case "quit", "exit", "q":
					return nil
				case "clear", "new", "reset":
					conversationID = ""
					p.Line("started a new conversation")
					continue
				}

				resp, err := client.Chat(ctx, conversationID, input)
				if err != nil {
					p.Line("error: %v", err)
					continue
				}
				conversationID = resp.ConversationID
				p.Reply(resp.Assistant.Text)
			}
		},
	}

	cmd.Flags().StringVar(&conversationID, "session", "", "continue an existing conversation")
	return cmd
}
