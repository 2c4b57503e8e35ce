package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
)

// DefaultContextTurns is the trailing window fed to generators (three exchanges).
const DefaultContextTurns = 6

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides how ids are minted for id-less requests.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock overrides the time source used for turn timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithJournal mirrors recorded turns into j from a background writer, in
// transcript order. Journal failures are logged only. Close flushes it.
func WithJournal(j Journal) Option {
	return func(s *Store) {
		s.journal = j
	}
}

type session struct {
	mu    sync.RWMutex
	turns []chat.Turn
}

// Store owns every conversation session for the lifetime of the process.
// The map lock only guards lookup and insertion; appends take the per-session lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	newID   IDGenerator
	now     func() time.Time
	journal Journal
	writer  *journalWriter
}

// NewStore bootstraps an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	s.newID = TimestampIDs(func() time.Time { return s.now() })

	for _, opt := range opts {
		opt(s)
	}
	if s.journal != nil {
		s.writer = newJournalWriter(s.journal, journalQueueSize)
	}
	return s
}

// Close flushes turns still queued for the journal. Turns recorded afterwards
// stay in memory only.
func (s *Store) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.close(ctx)
}

// EnsureSession returns id unchanged, creating an empty session when it is new.
// An empty id mints a fresh one.
func (s *Store) EnsureSession(id string) string {
	if id == "" {
		id = s.newID()
	}
	s.get(id)
	return id
}

// RecordTurn appends a turn stamped with the current time. Unknown sessions are created.
func (s *Store) RecordTurn(sessionID string, speaker chat.Speaker, text string) chat.Turn {
	sess := s.get(sessionID)

	sess.mu.Lock()
	now := s.now().UTC()
	if n := len(sess.turns); n > 0 && now.Before(sess.turns[n-1].CreatedAt) {
		now = sess.turns[n-1].CreatedAt
	}
	turn := chat.Turn{
		Speaker:   speaker,
		Text:      text,
		CreatedAt: now,
		Kind:      chat.KindText,
	}
	sess.turns = append(sess.turns, turn)
	// enqueue under the session lock so journal order matches transcript order
	if s.writer != nil && !s.writer.enqueue(journalEntry{sessionID: sessionID, turn: turn}) {
		log.Warn().Str("component", "store").Str("session", sessionID).Msg("journal closed, turn not journaled")
	}
	sess.mu.Unlock()

	return turn
}

// BuildContext returns the last k turns in recorded order. k <= 0 yields no turns.
func (s *Store) BuildContext(sessionID string, k int) []chat.Turn {
	sess, ok := s.lookup(sessionID)
	if !ok || k <= 0 {
		return []chat.Turn{}
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	start := 0
	if len(sess.turns) > k {
		start = len(sess.turns) - k
	}
	return copyTurns(sess.turns[start:])
}

// FullTranscript returns a copy of the whole transcript.
func (s *Store) FullTranscript(sessionID string) []chat.Turn {
	turns, _ := s.Lookup(sessionID)
	return turns
}

// Lookup reads a transcript without creating the session.
func (s *Store) Lookup(sessionID string) ([]chat.Turn, bool) {
	sess, ok := s.lookup(sessionID)
	if !ok {
		return []chat.Turn{}, false
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return copyTurns(sess.turns), true
}

// State reports whether the session has any turns yet.
func (s *Store) State(sessionID string) chat.SessionState {
	sess, ok := s.lookup(sessionID)
	if !ok {
		return chat.StateEmpty
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	if len(sess.turns) == 0 {
		return chat.StateEmpty
	}
	return chat.StateActive
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) get(id string) *session {
	if sess, ok := s.lookup(id); ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := &session{turns: make([]chat.Turn, 0, 16)}
	s.sessions[id] = sess
	return sess
}

func copyTurns(turns []chat.Turn) []chat.Turn {
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied
}
