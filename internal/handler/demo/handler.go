package demo

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/pkg/utils"
)

// Handler serves the text-only demo conversation endpoints.
type Handler struct {
	conv    *conversation.Service
	enabled bool
}

func New(conv *conversation.Service, enabled bool) *Handler {
	return &Handler{conv: conv, enabled: enabled}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/demo/chat", h.handleChat)
	r.Get("/demo/chat/{sessionID}", h.handleTranscript)
}

type chatRequest struct {
	UserInput      string `json:"user_input"`
	SessionID      string `json:"session_id"`
	ConversationID string `json:"conversation_id"`
}

func (r chatRequest) sessionID() string {
	if r.SessionID != "" {
		return r.SessionID
	}
	return r.ConversationID
}

type chatResponse struct {
	ConversationID string `json:"conversation_id"`
	chat.Exchange
}

type transcriptResponse struct {
	ConversationID string            `json:"conversation_id"`
	State          chat.SessionState `json:"state"`
	Transcript     []chat.Turn       `json:"conversation_history"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		utils.RespondError(w, http.StatusBadRequest, "demo mode not enabled")
		return
	}

	var req chatRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange := h.conv.Submit(r.Context(), req.sessionID(), req.UserInput)
	utils.RespondJSON(w, http.StatusOK, chatResponse{
		ConversationID: exchange.SessionID,
		Exchange:       exchange,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	store := h.conv.Store()

	turns, ok := store.Lookup(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, transcriptResponse{
		ConversationID: id,
		State:          store.State(id),
		Transcript:     turns,
	})
}
