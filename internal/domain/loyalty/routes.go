package loyalty

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the loyalty routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(authMiddleware)

	r.Get("/", h.ListProgress)
	r.Post("/orders", h.ProcessOrder)

	return r
}
