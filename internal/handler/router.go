package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/voicedesk/internal/handler/call"
	"github.com/zhouzirui/voicedesk/internal/handler/callstream"
	"github.com/zhouzirui/voicedesk/internal/handler/demo"
	"github.com/zhouzirui/voicedesk/internal/handler/health"
	"github.com/zhouzirui/voicedesk/internal/handler/page"
	"github.com/zhouzirui/voicedesk/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/voicedesk/internal/middleware"
	personaModel "github.com/zhouzirui/voicedesk/internal/model/persona"
	"github.com/zhouzirui/voicedesk/internal/service/conversation"
	"github.com/zhouzirui/voicedesk/internal/service/speech"
	"github.com/zhouzirui/voicedesk/internal/service/telephony"
)

// Deps carries everything the routes need.
type Deps struct {
	Logger       zerolog.Logger
	DemoMode     bool
	PublicURL    string
	Personas     personaModel.Store
	PersonaID    string
	Conversation *conversation.Service
	Recognizer   speech.Recognizer
	Synthesizer  speech.Synthesizer
	Dialer       telephony.Dialer
	Stream       callstream.Config
}

// NewRouter wires HTTP routes to core services.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	backends := health.Backends{
		Recognizer:  d.Recognizer.Backend(),
		Generator:   d.Conversation.Backend(),
		Synthesizer: d.Synthesizer.Backend(),
		Telephony:   d.Dialer.Backend(),
	}

	page.New(d.DemoMode, d.PublicURL, backends.Telephony).RegisterRoutes(r)
	health.New(d.DemoMode, backends, d.Conversation.Store()).RegisterRoutes(r)
	demo.New(d.Conversation, d.DemoMode).RegisterRoutes(r)
	call.New(d.Dialer, d.DemoMode).RegisterRoutes(r)
	callstream.New(d.Conversation, d.Recognizer, d.Synthesizer, d.Stream).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		persona.New(d.Personas, d.PersonaID).RegisterRoutes(api)
	})

	return r
}
