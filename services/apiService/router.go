package apiService

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router wires the dashboard endpoints. The UI is a separate app on
// another origin, so CORS stays permissive on localhost.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/slip", h.GetSlip)
		r.Post("/slip/picks", h.AddPick)
		r.Delete("/slip/picks/{pickID}", h.RemovePick)
		r.Post("/slip/ai-refresh", h.RefreshAIPicks)

		r.Get("/bankroll", h.GetBankroll)

		r.Get("/tickets/active", h.GetActiveTickets)
		r.Get("/tickets/history", h.GetTicketHistory)
		r.Post("/tickets", h.PlaceTicket)
		r.Post("/tickets/{index}/resolve", h.ResolveTicket)

		r.Get("/quota", h.GetQuota)
		r.Get("/view", h.GetView)
		r.Put("/view", h.SetView)
	})

	return r
}
