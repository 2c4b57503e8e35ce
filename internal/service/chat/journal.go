package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
)

// Journal receives a copy of every recorded turn.
type Journal interface {
	Append(ctx context.Context, sessionID string, turn chat.Turn) error
}

// journalQueueSize bounds how far the journal may lag behind the transcript
// before RecordTurn applies backpressure.
const journalQueueSize = 1024

type journalEntry struct {
	sessionID string
	turn      chat.Turn
}

// journalWriter is the single writer in front of a Journal. Entries are
// delivered in enqueue order.
type journalWriter struct {
	journal Journal
	queue   chan journalEntry
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newJournalWriter(j Journal, size int) *journalWriter {
	w := &journalWriter{
		journal: j,
		queue:   make(chan journalEntry, size),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *journalWriter) run() {
	defer close(w.done)
	for e := range w.queue {
		if err := w.journal.Append(context.Background(), e.sessionID, e.turn); err != nil {
			log.Warn().Err(err).Str("component", "store").Str("session", e.sessionID).Msg("journal append failed")
		}
	}
}

// enqueue reports false once the writer has been closed.
func (w *journalWriter) enqueue(e journalEntry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	w.queue <- e
	return true
}

// close stops intake and waits for queued entries to reach the journal.
func (w *journalWriter) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
