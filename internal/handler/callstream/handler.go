package callstream

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/internal/service/speech"
	"github.com/zhouzirui/voicedesk/pkg/log"
)

const (
	readTimeout  = 60 * time.Second
	pingPeriod   = 54 * time.Second
	writeTimeout = 10 * time.Second

	// DisabledReason is sent in the close frame when streaming is turned off.
	DisabledReason = "WebSocket only available in production mode"
)

// Config tunes the call stream.
type Config struct {
	Enabled    bool
	ChunkBytes int
	Language   string
	SampleRate int
}

// Handler bridges a telephony bidirectional audio stream to the conversation service.
type Handler struct {
	conv        *conversation.Service
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	cfg         Config
	upgrader    websocket.Upgrader
	newID       func() string
}

func New(conv *conversation.Service, recognizer speech.Recognizer, synthesizer speech.Synthesizer, cfg Config) *Handler {
	if cfg.ChunkBytes <= 0 {
		cfg.ChunkBytes = speech.DefaultChunkBytes
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 8000
	}
	return &Handler{
		conv:        conv,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		newID: func() string { return "ws_call_" + uuid.NewString() },
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/call", h.handleStream)
}

type inboundEvent struct {
	Event          string      `json:"event"`
	SequenceNumber int64       `json:"sequenceNumber,omitempty"`
	StreamID       string      `json:"streamId,omitempty"`
	Start          *startEvent `json:"start,omitempty"`
	Media          *mediaEvent `json:"media,omitempty"`
}

type startEvent struct {
	CallID   string `json:"callId"`
	StreamID string `json:"streamId"`
}

type mediaEvent struct {
	Track     string `json:"track,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   string `json:"payload"`
}

type playAudio struct {
	Event string    `json:"event"`
	Media playMedia `json:"media"`
}

type playMedia struct {
	ContentType string `json:"contentType"`
	SampleRate  int    `json:"sampleRate"`
	Payload     string `json:"payload"`
}

// streamState is owned by the read loop of one connection.
type streamState struct {
	sessionID string
	streamID  string
	buffer    *speech.ChunkBuffer
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	logger := log.Component(r.Context(), "callstream")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	if !h.cfg.Enabled {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, DisabledReason)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
		return
	}

	state := &streamState{
		sessionID: h.newID(),
		buffer:    speech.NewChunkBuffer(h.cfg.ChunkBytes),
	}
	logger.Info().Str("session", state.sessionID).Msg("call stream connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go pingLoop(ctx, conn)

	for {
		var evt inboundEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Str("session", state.sessionID).Msg("read failed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		switch evt.Event {
		case "start":
			if evt.Start != nil {
				if evt.Start.CallID != "" {
					state.sessionID = evt.Start.CallID
				}
				state.streamID = evt.Start.StreamID
			}
			logger.Info().Str("session", state.sessionID).Str("stream", state.streamID).Msg("call stream started")
		case "media":
			if evt.Media == nil {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(evt.Media.Payload)
			if err != nil {
				logger.Warn().Err(err).Str("session", state.sessionID).Msg("invalid media payload")
				continue
			}
			for _, unit := range state.buffer.Write(audio) {
				h.respond(ctx, conn, state, unit, logger)
			}
		case "stop":
			if rest := state.buffer.Flush(); rest != nil {
				h.respond(ctx, conn, state, rest, logger)
			}
			logger.Info().Str("session", state.sessionID).Msg("call stream stopped")
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream stopped")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		default:
			logger.Debug().Str("event", evt.Event).Msg("ignored stream event")
		}
	}
}

// respond runs one unit of caller audio through recognition, conversation and synthesis.
func (h *Handler) respond(ctx context.Context, conn *websocket.Conn, state *streamState, audio []byte, logger zerolog.Logger) {
	text, err := h.recognizer.Transcribe(ctx, audio, "pcm", h.cfg.Language)
	if err != nil {
		logger.Error().Err(err).Str("session", state.sessionID).Msg("transcription failed")
		return
	}
	if text == "" {
		return
	}

	exchange := h.conv.Submit(ctx, state.sessionID, text)

	reply, err := h.synthesizer.Synthesize(ctx, exchange.Assistant.Text)
	if err != nil {
		logger.Error().Err(err).Str("session", state.sessionID).Msg("synthesis failed")
		return
	}
	if len(reply) == 0 {
		return
	}

	out := playAudio{
		Event: "playAudio",
		Media: playMedia{
			ContentType: "audio/x-l16",
			SampleRate:  h.cfg.SampleRate,
			Payload:     base64.StdEncoding.EncodeToString(reply),
		},
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(out); err != nil {
		logger.Warn().Err(err).Str("session", state.sessionID).Msg("write playAudio failed")
	}
}

func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
