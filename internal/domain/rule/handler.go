package rule

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canteenhq/canteen-api/internal/pkg/response"
	"github.com/canteenhq/canteen-api/internal/pkg/validator"
)

// Handler handles reward rule HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates rule handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /admin/rewards/rules
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rule, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		writeRuleError(w, err)
		return
	}

	response.Created(w, ToResponse(rule))
}

// Update handles PATCH /admin/rewards/rules/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	var req UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rule, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		writeRuleError(w, err)
		return
	}

	response.OK(w, ToResponse(rule))
}

// Delete handles DELETE /admin/rewards/rules/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeRuleError(w, err)
		return
	}

	response.NoContent(w)
}

// ToggleActive handles POST /admin/rewards/rules/{id}/toggle
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid rule ID")
		return
	}

	rule, err := h.svc.ToggleActive(r.Context(), id)
	if err != nil {
		writeRuleError(w, err)
		return
	}

	response.OK(w, ToResponse(rule))
}

// List handles GET /admin/rewards/rules?filter=all|active
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("filter") == "active"

	rules, err := h.svc.List(r.Context(), onlyActive)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*RuleResponse, len(rules))
	for i := range rules {
		items[i] = ToResponse(&rules[i])
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// ListActive handles GET /rewards/rules (user-facing, active rules only)
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ListActiveRules(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*RuleResponse, len(rules))
	for i := range rules {
		items[i] = ToResponse(&rules[i])
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

func writeRuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRuleNotFound):
		response.NotFound(w, "Reward rule not found")
	case errors.Is(err, ErrDuplicateActiveSlug):
		response.Conflict(w, "Another active rule already targets this item")
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrInvalidPurchases), errors.Is(err, ErrInvalidDiscount):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
