/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the kiosk/back-office frontends

ROUTE GROUPS:
  /api/timeclock/*   Clock submissions, sessions, raw events
  /api/payroll/*     Pay calendars, runs, rates
  /api/health        Liveness

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Timeclock routes
		r.Route("/timeclock", func(r chi.Router) {
			r.Post("/clock-in", h.ClockIn)
			r.Post("/clock-out", h.ClockOut)
			r.Post("/break-start", h.StartBreak)
			r.Post("/break-end", h.EndBreak)

			r.Get("/sessions", h.AllStaffSessions)
			r.Route("/staff/{staffNumber}", func(r chi.Router) {
				r.Get("/sessions", h.StaffSessions)
				r.Put("/sessions/{date}", h.EditSession)
			})

			r.Get("/events", h.QueryEvents)
			r.Put("/events/{id}", h.EditEvent)
		})

		// Payroll routes
		r.Route("/payroll", func(r chi.Router) {
			r.Route("/calendars", func(r chi.Router) {
				r.Get("/", h.ListCalendars)
				r.Post("/", h.CreateCalendar)
				r.Get("/{id}", h.GetCalendar)
				r.Get("/{id}/runs", h.RunsByCalendar)
				r.Post("/{id}/runs", h.CreateRun)
			})
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", h.ListRuns)
				r.Get("/{id}", h.GetRun)
			})
			r.Route("/rates", func(r chi.Router) {
				r.Get("/", h.ListRates)
				r.Post("/", h.CreateRate)
			})
		})

		r.Get("/health", h.Health)
	})

	return r
}
