package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/voicedesk/internal/handler"
	"github.com/zhouzirui/voicedesk/internal/handler/callstream"
	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/internal/service/ai"
	chatservice "github.com/zhouzirui/voicedesk/internal/service/chat"
	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/internal/service/speech"
	"github.com/zhouzirui/voicedesk/internal/service/telephony"
	"github.com/zhouzirui/voicedesk/internal/storage/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	personas := persona.NewMemoryStore(persona.Seed())
	p, err := persona.Resolve(personas, "")
	require.NoError(t, err)
	conv := conversation.NewService(chatservice.NewStore(), ai.NewRuleGenerator(), ai.NewPromptBuilder(p), conversation.Config{Timeout: time.Second})

	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		Logger:       zerolog.Nop(),
		DemoMode:     true,
		PublicURL:    "http://localhost:8000",
		Personas:     personas,
		PersonaID:    p.ID,
		Conversation: conv,
		Recognizer:   speech.NewMockRecognizer(),
		Synthesizer:  speech.NewMockSynthesizer(),
		Dialer:       telephony.NewSimulatedDialer(),
		Stream:       callstream.Config{},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmdStructure(t *testing.T) {
	cmd := NewRootCmd()
	assert.Equal(t, "democlient", cmd.Use)

	for _, name := range []string{"check", "test", "chat", "bench", "call", "journal"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	flag := cmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, flag)
	assert.Equal(t, "30s", flag.DefValue)
}

func TestCheckCmd(t *testing.T) {
	srv := newTestServer(t)

	out, err := execute(t, "--url", srv.URL, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "status:    healthy")
	assert.Contains(t, out, "demo mode: true")
	assert.Contains(t, out, "backend=rule")
}

func TestTestCmdRunsScript(t *testing.T) {
	srv := newTestServer(t)

	out, err := execute(t, "--url", srv.URL, "test")
	require.NoError(t, err)
	assert.Contains(t, out, "1. You: "+scriptedMessages[0])
	assert.Contains(t, out, "Assistant: "+ai.DefaultReplies[0])
	assert.Contains(t, out, "call demo_call_")
}

func TestChatCmdKeepsConversation(t *testing.T) {
	srv := newTestServer(t)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("hello\n\nclear\nagain\nquit\n"))
	cmd.SetArgs([]string{"--url", srv.URL, "chat"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, 2, strings.Count(out.String(), "Assistant: "))
	assert.Contains(t, out.String(), "started a new conversation")
}

func TestBenchCmd(t *testing.T) {
	srv := newTestServer(t)

	out, err := execute(t, "--url", srv.URL, "bench", "--rounds", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "successful: 10/10")
}

func TestCallCmd(t *testing.T) {
	srv := newTestServer(t)

	out, err := execute(t, "--url", srv.URL, "call", "+15551234567")
	require.NoError(t, err)
	assert.Contains(t, out, "Demo call simulated: call_id=demo_call_")

	_, err = execute(t, "--url", srv.URL, "call")
	assert.Error(t, err)
}

func TestJournalCmd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := sqlite.NewDB(ctx, path)
	require.NoError(t, err)
	store := chatservice.NewStore(chatservice.WithJournal(sqlite.NewJournal(db)))
	store.RecordTurn("s1", chat.SpeakerUser, "first")
	store.RecordTurn("s1", chat.SpeakerAssistant, "second")
	require.NoError(t, store.Close(ctx))
	require.NoError(t, db.Close())

	out, err := execute(t, "journal", "s1", "--db", path, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "session s1: 2 turns journaled, showing 1")
	assert.Contains(t, out, "Assistant: second")
	assert.NotContains(t, out, "first")
}

func TestJournalCmdPathResolution(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "env.db")

	db, err := sqlite.NewDB(ctx, path)
	require.NoError(t, err)
	store := chatservice.NewStore(chatservice.WithJournal(sqlite.NewJournal(db)))
	store.RecordTurn("s2", chat.SpeakerUser, "from env")
	require.NoError(t, store.Close(ctx))
	require.NoError(t, db.Close())

	t.Setenv("TRANSCRIPT_JOURNAL_PATH", path)
	out, err := execute(t, "journal", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "session s2: 1 turns journaled")

	missing := filepath.Join(t.TempDir(), "nope.db")
	_, err = execute(t, "journal", "s2", "--db", missing)
	require.Error(t, err)
	assert.NoFileExists(t, missing)

	t.Setenv("TRANSCRIPT_JOURNAL_PATH", "")
	_, err = execute(t, "journal", "s2")
	assert.Error(t, err)
}

func TestClientReportsAPIError(t *testing.T) {
	srv := newTestServer(t)
	client := newAPIClient(srv.URL, time.Second)

	_, err := client.Call(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "phone number is required")
}

func TestBenchAverage(t *testing.T) {
	assert.Equal(t, time.Duration(0), benchResult{}.Average())
	assert.Equal(t, 2*time.Second, benchResult{Total: 10 * time.Second, Attempted: 5}.Average())
}
