package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the handler into the versioned route tree.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assistants", func(r chi.Router) {
			r.Post("/", h.CreateAssistant)
			r.Get("/", h.ListAssistants)
			r.Get("/{assistantID}", h.GetAssistant)
			r.Patch("/{assistantID}", h.UpdateAssistant)
			r.Delete("/{assistantID}", h.DeleteAssistant)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Post("/", h.CreateThread)
			r.Get("/", h.ListThreads)
			r.Get("/{threadID}", h.GetThread)
			r.Patch("/{threadID}", h.UpdateThread)
			r.Delete("/{threadID}", h.DeleteThread)

			r.Post("/{threadID}/messages", h.AddMessage)
			r.Get("/{threadID}/messages", h.ListMessages)
			r.Get("/{threadID}/context", h.GetContext)
			r.Post("/{threadID}/prune", h.PruneThread)
			r.Post("/{threadID}/runs", h.CreateRun)
		})
	})

	return r
}
