package coupon

import (
	"time"

	"github.com/google/uuid"
)

// ApplyRequest for computing a coupon's discount against a cart subtotal
type ApplyRequest struct {
	SubtotalCents int64 `json:"subtotal_cents" validate:"required,gt=0"`
}

// CouponResponse for API responses
type CouponResponse struct {
	ID              uuid.UUID `json:"id"`
	RewardRuleID    uuid.UUID `json:"reward_rule_id"`
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	Status          string    `json:"status"`
	ItemSlug        string    `json:"item_slug,omitempty"`
	Description     string    `json:"description,omitempty"`
	ExpiresAt       string    `json:"expires_at"`
	CreatedAt       string    `json:"created_at"`
}

// ApplyResponse carries the computed discount for a subtotal
type ApplyResponse struct {
	CouponID        uuid.UUID `json:"coupon_id"`
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	SubtotalCents   int64     `json:"subtotal_cents"`
	DiscountCents   int64     `json:"discount_cents"`
	TotalCents      int64     `json:"total_cents"`
}

// ToResponse converts entity to response
func ToResponse(c *DiscountCoupon) *CouponResponse {
	return &CouponResponse{
		ID:              c.ID,
		RewardRuleID:    c.RewardRuleID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		Status:          string(c.Status),
		ExpiresAt:       c.ExpiresAt.Format(time.RFC3339),
		CreatedAt:       c.CreatedAt.Format(time.RFC3339),
	}
}

// ToEligibleResponse converts the joined read model to response
func ToEligibleResponse(c *EligibleCoupon) *CouponResponse {
	resp := ToResponse(&c.DiscountCoupon)
	resp.ItemSlug = c.ItemSlug
	if c.RuleDescription.Valid {
		resp.Description = c.RuleDescription.String
	}
	return resp
}
