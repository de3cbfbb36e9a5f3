package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes attaches ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}", h.GetAccount)
	})
	r.Route("/entries", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateEntry)
		r.Get("/{id}", h.GetEntry)
		r.Post("/{id}/post", h.PostEntry)
		r.Post("/{id}/reverse", h.ReverseEntry)
	})
	r.Route("/reports", func(r chi.Router) {
		r.Get("/trial-balance", h.TrialBalanceReport)
		r.Get("/balance-sheet", h.BalanceSheetReport)
		r.Get("/profit-loss", h.ProfitLossReport)
	})
}
