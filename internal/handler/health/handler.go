package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/voicedesk/pkg/utils"
)

// Backends names what is wired behind each collaborator.
type Backends struct {
	Recognizer  string `json:"recognizer"`
	Generator   string `json:"generator"`
	Synthesizer string `json:"synthesizer"`
	Telephony   string `json:"telephony"`
}

// SessionCounter reports how many sessions are held in memory.
type SessionCounter interface {
	Len() int
}

type Handler struct {
	demo     bool
	backends Backends
	sessions SessionCounter
	now      func() time.Time
}

func New(demo bool, backends Backends, sessions SessionCounter) *Handler {
	return &Handler{demo: demo, backends: backends, sessions: sessions, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
}

type components struct {
	Recognizer  bool `json:"recognizer"`
	Generator   bool `json:"generator"`
	Synthesizer bool `json:"synthesizer"`
	Telephony   bool `json:"telephony"`
}

type response struct {
	Status     string     `json:"status"`
	DemoMode   bool       `json:"demo_mode"`
	Timestamp  time.Time  `json:"timestamp"`
	Sessions   int        `json:"sessions"`
	Components components `json:"components"`
	Backends   Backends   `json:"backends"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, response{
		Status:    "healthy",
		DemoMode:  h.demo,
		Timestamp: h.now(),
		Sessions:  h.sessions.Len(),
		Components: components{
			Recognizer:  isReal(h.backends.Recognizer),
			Generator:   isReal(h.backends.Generator),
			Synthesizer: isReal(h.backends.Synthesizer),
			Telephony:   isReal(h.backends.Telephony),
		},
		Backends: h.backends,
	})
}

func isReal(backend string) bool {
	switch backend {
	case "", "mock", "rule", "simulated":
		return false
	}
	return true
}
