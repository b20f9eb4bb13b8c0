package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates the HTTP router. All routes require the X-Owner-ID
// header; data access is scoped to that owner throughout.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(ownerScope)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{key}", h.GetAccount)
			r.Get("/{key}/balance", h.GetBalance)
			r.Post("/{key}/recalculate", h.Recalculate)
			r.Post("/{key}/transactions", h.CreateTransaction)
			r.Post("/{key}/bets", h.CreateBet)
			r.Get("/{key}/stats", h.GetStats)
			r.Get("/{key}/streaks", h.GetStreaks)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Patch("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Route("/bets", func(r chi.Router) {
			r.Post("/{id}/settle", h.SettleBet)
			r.Delete("/{id}", h.DeleteBet)
		})

		r.Post("/import", h.Import)
	})

	return r
}
