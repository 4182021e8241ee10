package loyalty

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/canteenhq/canteen-api/internal/middleware"
	"github.com/canteenhq/canteen-api/internal/pkg/response"
	"github.com/canteenhq/canteen-api/internal/pkg/validator"
)

// Handler handles loyalty HTTP requests
type Handler struct {
	engine *Engine
}

// NewHandler creates loyalty handler
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// ProcessOrder handles POST /loyalty/orders — the order intake contract,
// invoked once per successfully placed order. Reward processing failures for
// individual lines are reported in the per-item results and never fail the
// request.
func (h *Handler) ProcessOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ProcessOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	items := make([]OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = OrderItem{Slug: item.Slug, Name: item.Name, Quantity: item.Quantity}
	}

	results, err := h.engine.ProcessOrder(r.Context(), userID, items)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingUser):
			response.Unauthorized(w, "unauthorized")
		case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrUnresolvedItem):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	items2 := make([]*ItemResultResponse, len(results))
	for i := range results {
		items2[i] = ToItemResultResponse(&results[i])
	}

	response.OK(w, map[string]interface{}{
		"items": items2,
	})
}

// ListProgress handles GET /loyalty — the user's milestone progress view
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	entries, err := h.engine.ListProgress(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*ProgressResponse, len(entries))
	for i := range entries {
		items[i] = ToProgressResponse(&entries[i])
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}
