package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/pkg/utils"
)

// Handler exposes the configured assistant personas.
type Handler struct {
	personas persona.Store
	active   string
}

// New builds the handler; active is the persona id the prompt builder uses.
func New(personas persona.Store, active string) *Handler {
	return &Handler{personas: personas, active: active}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/personas/{personaID}", h.handleGetPersona)
}

type listResponse struct {
	Active   string            `json:"active"`
	Personas []persona.Persona `json:"personas"`
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Active:   h.active,
		Personas: h.personas.List(),
	})
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	p, ok := h.personas.FindByID(chi.URLParam(r, "personaID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "persona not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}
