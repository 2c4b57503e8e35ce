package callstream

import (
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/internal/service/ai"
	chatservice "github.com/zhouzirui/voicedesk/internal/service/chat"
	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/internal/service/speech"
)

func newServer(t *testing.T, cfg Config) (*httptest.Server, *chatservice.Store) {
	t.Helper()

	p, err := persona.Resolve(persona.NewMemoryStore(persona.Seed()), "")
	require.NoError(t, err)

	store := chatservice.NewStore()
	conv := conversation.NewService(store, ai.NewRuleGenerator(), ai.NewPromptBuilder(p), conversation.Config{Timeout: time.Second})
	h := New(conv, speech.NewMockRecognizer(), speech.NewMockSynthesizer(), cfg)
	h.newID = func() string { return "ws_call_test" }

	r := chi.NewRouter()
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/call"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func media(payload []byte) map[string]any {
	return map[string]any{
		"event": "media",
		"media": map[string]any{
			"track":   "inbound",
			"payload": base64.StdEncoding.EncodeToString(payload),
		},
	}
}

func TestStreamRoundTrip(t *testing.T) {
	srv, store := newServer(t, Config{Enabled: true, ChunkBytes: 8})
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": "start",
		"start": map[string]any{"callId": "call-42", "streamId": "stream-1"},
	}))
	require.NoError(t, conn.WriteJSON(media(make([]byte, 8))))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out playAudio
	require.NoError(t, conn.ReadJSON(&out))

	assert.Equal(t, "playAudio", out.Event)
	assert.Equal(t, "audio/x-l16", out.Media.ContentType)
	assert.Equal(t, 8000, out.Media.SampleRate)
	audio, err := base64.StdEncoding.DecodeString(out.Media.Payload)
	require.NoError(t, err)
	assert.Equal(t, speech.MockAudio, audio)

	turns := store.FullTranscript("call-42")
	require.Len(t, turns, 2)
	assert.Equal(t, speech.MockUtterances[0], turns[0].Text)
	assert.Equal(t, chat.SpeakerAssistant, turns[1].Speaker)
}

func TestStreamStopFlushesRemainder(t *testing.T) {
	srv, store := newServer(t, Config{Enabled: true, ChunkBytes: 100})
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(media([]byte("partial"))))
	require.NoError(t, conn.WriteJSON(map[string]any{"event": "stop"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var out playAudio
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "playAudio", out.Event)

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)

	assert.Len(t, store.FullTranscript("ws_call_test"), 2)
}

func TestStreamDisabledClosesSocket(t *testing.T) {
	srv, store := newServer(t, Config{Enabled: false})
	conn := dial(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()

	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, DisabledReason, closeErr.Text)
	assert.Equal(t, 0, store.Len())
}
