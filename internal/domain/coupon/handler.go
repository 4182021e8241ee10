package coupon

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/canteenhq/canteen-api/internal/middleware"
	"github.com/canteenhq/canteen-api/internal/pkg/response"
	"github.com/canteenhq/canteen-api/internal/pkg/validator"
)

// Handler handles coupon HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates coupon handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListEligible handles GET /coupons
func (h *Handler) ListEligible(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	coupons, err := h.svc.ListEligible(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	items := make([]*CouponResponse, len(coupons))
	for i := range coupons {
		items[i] = ToEligibleResponse(&coupons[i])
	}

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// Apply handles POST /coupons/{id}/apply — pure discount computation,
// coupon state is not changed.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid coupon ID")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, discount, err := h.svc.ApplyCoupon(r.Context(), userID, couponID, req.SubtotalCents)
	if err != nil {
		writeCouponError(w, err)
		return
	}

	response.OK(w, &ApplyResponse{
		CouponID:        c.ID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		SubtotalCents:   req.SubtotalCents,
		DiscountCents:   discount,
		TotalCents:      req.SubtotalCents - discount,
	})
}

// Redeem handles POST /coupons/{id}/redeem
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid coupon ID")
		return
	}

	c, err := h.svc.Redeem(r.Context(), userID, couponID)
	if err != nil {
		writeCouponError(w, err)
		return
	}

	response.OK(w, ToResponse(c))
}

func writeCouponError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCouponNotFound):
		response.NotFound(w, "Coupon not found")
	case errors.Is(err, ErrNotEligible):
		response.Error(w, http.StatusUnprocessableEntity, "NOT_ELIGIBLE", "Coupon is expired or not eligible")
	default:
		response.InternalError(w)
	}
}
