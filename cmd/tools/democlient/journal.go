package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/voicedesk/internal/storage/sqlite"
)

func newJournalCmd() *cobra.Command {
	var (
		path  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "journal <session-id>",
		Short: "Print the most recent journaled turns of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if path == "" {
				return fmt.Errorf("no journal database: set --db or TRANSCRIPT_JOURNAL_PATH")
			}
			// NewDB would create an empty database at a mistyped path
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("open journal %s: %w", path, err)
			}
			db, err := sqlite.NewDB(ctx, path)
			if err != nil {
				return err
			}
			defer db.Close()

			journal := sqlite.NewJournal(db)
			total, err := journal.Count(ctx, args[0])
			if err != nil {
				return err
			}
			turns, err := journal.Recent(ctx, args[0], limit)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout())
			p.Line("session %s: %d turns journaled, showing %d", args[0], total, len(turns))
			for _, turn := range turns {
				p.Line("[%s] %s: %s", turn.CreatedAt.Format(time.DateTime), turn.Speaker.Label(), turn.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "db", os.Getenv("TRANSCRIPT_JOURNAL_PATH"), "journal database path (defaults to TRANSCRIPT_JOURNAL_PATH)")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of turns to show")
	return cmd
}
