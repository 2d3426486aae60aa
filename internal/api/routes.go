package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the router.
//
//	GET  /health
//	GET  /api/v1/themes/today
//	GET  /api/v1/themes/date/{date}
//	GET  /api/v1/themes/range?start=YYYY-MM-DD&end=YYYY-MM-DD
//	GET  /api/v1/themes/year/{year}
//	GET  /api/v1/rules
//	POST /api/v1/rules/infer          (API key)
//	GET  /api/v1/history/themes
func Routes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestContext)
	r.Use(middleware.RealIP)
	r.Use(Recovery(h.logger))
	r.Use(Logging(h.logger))
	r.Use(CORS)
	r.Use(middleware.Timeout(30 * time.Second))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", CodeBadRequest)
	})

	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/themes", func(r chi.Router) {
			r.Get("/today", h.GetToday)
			r.Get("/date/{date}", h.GetDate)
			r.Get("/range", h.GetRange)
			r.Get("/year/{year}", h.GetYear)
		})

		r.Get("/rules", h.ListRules)
		r.With(RequireAPIKey(h.cfg, h.logger)).Post("/rules/infer", h.InferRule)

		r.Get("/history/themes", h.ListHistory)
	})

	return r
}
