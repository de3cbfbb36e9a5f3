package inventory

import "github.com/go-chi/chi/v5"

// MountRoutes attaches inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/levels", func(r chi.Router) {
		r.Get("/", h.ListLevels)
		r.Get("/{productID}/{warehouseID}", h.GetLevel)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/", h.RecordTransaction)
	})
	r.Post("/adjustments", h.CreateAdjustment)
	r.Post("/transfers", h.CreateTransfer)
	r.Post("/reconcile", h.Reconcile)
	r.Route("/reports", func(r chi.Router) {
		r.Get("/valuation", h.ValuationReport)
		r.Get("/movement", h.MovementReport)
		r.Get("/low-stock", h.LowStockReport)
		r.Get("/out-of-stock", h.OutOfStockReport)
	})
}
