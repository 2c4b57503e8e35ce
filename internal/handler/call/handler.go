package call

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/voicedesk/internal/service/telephony"
	"github.com/zhouzirui/voicedesk/pkg/log"
	"github.com/zhouzirui/voicedesk/pkg/utils"
)

// Handler places outbound calls through the configured dialer.
type Handler struct {
	dialer telephony.Dialer
	demo   bool
}

func New(dialer telephony.Dialer, demo bool) *Handler {
	return &Handler{dialer: dialer, demo: demo}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/call", h.handleCall)
}

type callRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message,omitempty"`
}

type callResponse struct {
	Success  bool   `json:"success"`
	CallID   string `json:"call_id"`
	DemoMode bool   `json:"demo_mode"`
	Message  string `json:"message"`
}

func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		utils.RespondError(w, http.StatusBadRequest, telephony.ErrPhoneNumberRequired.Error())
		return
	}

	logger := log.Component(r.Context(), "call")

	callID, err := h.dialer.Dial(r.Context(), req.PhoneNumber)
	if err != nil {
		logger.Error().Err(err).Str("backend", h.dialer.Backend()).Msg("dial failed")
		if errors.Is(err, telephony.ErrPhoneNumberRequired) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "call failed: "+err.Error())
		return
	}

	logger.Info().Str("call_id", callID).Str("backend", h.dialer.Backend()).Msg("call placed")

	message := "Call initiated"
	if h.demo {
		message = "Demo call simulated"
	}
	utils.RespondJSON(w, http.StatusOK, callResponse{
		Success:  true,
		CallID:   callID,
		DemoMode: h.demo,
		Message:  message,
	})
}
