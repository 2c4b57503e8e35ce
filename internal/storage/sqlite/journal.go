package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/pkg/log"
)

// Journal is a write-through audit log of recorded turns.
// It is never read back into the live session store.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) Append(ctx context.Context, sessionID string, turn chat.Turn) error {
	query := `INSERT INTO turns (session_id, speaker, message, kind, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := j.db.ExecContext(ctx, query, sessionID, string(turn.Speaker), turn.Text, turn.Kind, turn.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// Recent returns up to limit of the newest journaled turns for a session, oldest first.
func (j *Journal) Recent(ctx context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	query := `SELECT speaker, message, kind, created_at FROM turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []chat.Turn
	for rows.Next() {
		var turn chat.Turn
		var speaker string
		if err := rows.Scan(&speaker, &turn.Text, &turn.Kind, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turn.Speaker = chat.Speaker(speaker)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest-first from the query; flip back to chronological order
	for i, k := 0, len(turns)-1; i < k; i, k = i+1, k-1 {
		turns[i], turns[k] = turns[k], turns[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(turns)).Str("session", sessionID).Msg("loaded journaled turns")
	return turns, nil
}

// Count returns how many turns were journaled for a session.
func (j *Journal) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return n, nil
}
