package page

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/voicedesk/pkg/log"
	"github.com/zhouzirui/voicedesk/pkg/utils"
)

//go:embed templates/index.html
var templates embed.FS

var index = template.Must(template.ParseFS(templates, "templates/index.html"))

// Endpoint is one line of the endpoint listing.
type Endpoint struct {
	Method  string
	Path    string
	Summary string
}

// Endpoints lists the public routes shown on the landing page.
var Endpoints = []Endpoint{
	{Method: http.MethodGet, Path: "/health", Summary: "service and component status"},
	{Method: http.MethodPost, Path: "/demo/chat", Summary: "send a text message (demo mode)"},
	{Method: http.MethodGet, Path: "/demo/chat/{session_id}", Summary: "read a conversation transcript"},
	{Method: http.MethodPost, Path: "/call", Summary: "place an outbound call"},
	{Method: http.MethodGet, Path: "/api/personas", Summary: "list assistant personas"},
	{Method: "WS", Path: "/ws/call", Summary: "telephony audio stream"},
}

type Handler struct {
	demo      bool
	baseURL   string
	telephony string
}

func New(demo bool, baseURL, telephony string) *Handler {
	return &Handler{demo: demo, baseURL: strings.TrimRight(baseURL, "/"), telephony: telephony}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := index.Execute(w, map[string]any{
		"Demo":      h.demo,
		"BaseURL":   h.baseURL,
		"Telephony": h.telephony,
		"Endpoints": Endpoints,
	})
	if err != nil {
		logger := log.Component(r.Context(), "page")
		logger.Error().Err(err).Msg("render index")
		utils.RespondError(w, http.StatusInternalServerError, "render failed")
	}
}
