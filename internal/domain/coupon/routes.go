package coupon

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the checkout-facing coupon routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListEligible)

	r.Route("/{id}", func(r chi.Router) {
		r.Post("/apply", h.Apply)
		r.Post("/redeem", h.Redeem)
	})

	return r
}
