package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemRequest is one line of a finalized order
type OrderItemRequest struct {
	Slug     string `json:"slug,omitempty" validate:"omitempty,max=255"`
	Name     string `json:"name,omitempty" validate:"omitempty,max=255"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// ProcessOrderRequest for the order intake endpoint, called once per
// successfully placed order
type ProcessOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// IssuedCouponResponse describes a coupon minted while processing a line
type IssuedCouponResponse struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	DiscountPercent float64   `json:"discount_percent"`
	ExpiresAt       string    `json:"expires_at"`
}

// ItemResultResponse is the per-line outcome returned to the caller for
// "reward earned" display
type ItemResultResponse struct {
	ItemSlug      string                `json:"item_slug"`
	Quantity      int                   `json:"quantity"`
	PurchaseCount int                   `json:"purchase_count"`
	CouponIssued  *IssuedCouponResponse `json:"coupon_issued,omitempty"`
	Error         string                `json:"error,omitempty"`
}

// ProgressResponse is one ledger entry with milestone progress
type ProgressResponse struct {
	ItemSlug          string  `json:"item_slug"`
	PurchaseCount     int     `json:"purchase_count"`
	RequiredPurchases int     `json:"required_purchases,omitempty"`
	DiscountPercent   float64 `json:"discount_percent,omitempty"`
	Description       string  `json:"description,omitempty"`
	Achieved          bool    `json:"achieved"`
	UpdatedAt         string  `json:"updated_at"`
}

// ToItemResultResponse converts an engine result to the API shape
func ToItemResultResponse(r *ItemResult) *ItemResultResponse {
	resp := &ItemResultResponse{
		ItemSlug:      r.ItemSlug,
		Quantity:      r.Quantity,
		PurchaseCount: r.PurchaseCount,
	}
	if r.Coupon != nil {
		resp.CouponIssued = &IssuedCouponResponse{
			ID:              r.Coupon.ID,
			Code:            r.Coupon.Code,
			DiscountPercent: r.Coupon.DiscountPercent,
			ExpiresAt:       r.Coupon.ExpiresAt.Format(time.RFC3339),
		}
	}
	if r.Err != nil {
		resp.Error = "loyalty update failed for this item"
	}
	return resp
}

// ToProgressResponse converts a progress entry to the API shape
func ToProgressResponse(p *ProgressEntry) *ProgressResponse {
	resp := &ProgressResponse{
		ItemSlug:      p.ItemSlug,
		PurchaseCount: p.PurchaseCount,
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
	if p.RequiredPurchases.Valid {
		resp.RequiredPurchases = int(p.RequiredPurchases.Int64)
		resp.Achieved = p.PurchaseCount >= resp.RequiredPurchases
	}
	if p.DiscountPercent.Valid {
		resp.DiscountPercent = p.DiscountPercent.Float64
	}
	if p.RuleDescription.Valid {
		resp.Description = p.RuleDescription.String
	}
	return resp
}
