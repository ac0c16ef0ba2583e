package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

// NewRouter wires the lead routes and the readiness probe behind the common
// middleware stack. ch may be nil.
func NewRouter(serverName string, lh *LeadHandler, ch *CheckHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(serverName, otelchi.WithChiRoutes(r)))

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", lh.Create)
		r.Get("/", lh.List)
		r.Get("/{id}", lh.GetByID)
	})

	if ch != nil {
		r.Get("/readiness", ch.Readiness)
	}

	return r
}
